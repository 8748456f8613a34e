package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/middleware"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
)

// RelationshipHandler manages doctor-patient links and organization grants.
type RelationshipHandler struct {
	links  *services.LinkService
	grants *services.GrantService
	log    *zap.Logger
}

func NewRelationshipHandler(links *services.LinkService, grants *services.GrantService, log *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{links: links, grants: grants, log: log}
}

func (h *RelationshipHandler) ListLinks(c *gin.Context) {
	links, err := h.links.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, links)
}

func (h *RelationshipHandler) RequestLink(c *gin.Context) {
	var req models.CreateLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.links.Request(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusCreated, link, "Link requested, waiting for patient approval")
}

func (h *RelationshipHandler) ApproveLink(c *gin.Context) {
	link, err := h.links.Approve(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, link, "Link approved")
}

func (h *RelationshipHandler) DischargeLink(c *gin.Context) {
	link, err := h.links.Discharge(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, link, "Patient discharged")
}

func (h *RelationshipHandler) ListGrants(c *gin.Context) {
	grants, err := h.grants.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, grants)
}

func (h *RelationshipHandler) GrantAccess(c *gin.Context) {
	var req models.GrantAccessRequest
	if !bindJSON(c, &req) {
		return
	}
	grant, err := h.grants.Grant(c.Request.Context(), middleware.Actor(c), req.OrganizationID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, grant, "Access granted")
}

func (h *RelationshipHandler) RevokeAccess(c *gin.Context) {
	grant, err := h.grants.Revoke(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, grant, "Access revoked")
}
