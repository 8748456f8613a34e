package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/middleware"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/records"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
)

type AppointmentHandler struct {
	appointments *services.AppointmentService
	loc          *time.Location
	log          *zap.Logger
}

func NewAppointmentHandler(appointments *services.AppointmentService, loc *time.Location, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, loc: loc, log: log}
}

// ListAppointments returns a flat list, or one entry per calendar day when
// grouped=true.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	appts, err := h.appointments.List(c.Request.Context(), middleware.Actor(c), c.Query("patient_id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if c.Query("grouped") == "true" {
		respond(c, http.StatusOK, records.GroupAppointmentsByDate(appts, h.loc))
		return
	}
	respond(c, http.StatusOK, appts)
}

func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	appt, err := h.appointments.Create(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusCreated, appt, "Appointment booked")
}

func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	details, err := h.appointments.Details(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, details)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateAppointmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	appt, err := h.appointments.Transition(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, appt, "Appointment updated")
}
