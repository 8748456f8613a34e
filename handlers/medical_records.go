package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/middleware"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
)

type MedicalRecordHandler struct {
	records        *services.MedicalRecordService
	accessLogs     *services.AccessLogService
	maxUploadBytes int64
	log            *zap.Logger
}

func NewMedicalRecordHandler(records *services.MedicalRecordService, accessLogs *services.AccessLogService, maxUploadBytes int64, log *zap.Logger) *MedicalRecordHandler {
	return &MedicalRecordHandler{records: records, accessLogs: accessLogs, maxUploadBytes: maxUploadBytes, log: log}
}

func (h *MedicalRecordHandler) GetHistory(c *gin.Context) {
	recs, err := h.records.History(c.Request.Context(), middleware.Actor(c), c.Query("patient_id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, recs)
}

// CreateRecord accepts either a JSON body or a multipart form with an
// optional "file" part.
func (h *MedicalRecordHandler) CreateRecord(c *gin.Context) {
	var req models.CreateMedicalRecordRequest
	var file *services.Attachment

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if h.maxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
		}
		if err := c.ShouldBind(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(c, http.StatusRequestEntityTooLarge, "Upload too large")
				return
			}
			respondError(c, http.StatusBadRequest, "Invalid form: "+err.Error())
			return
		}

		header, err := c.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			respondError(c, http.StatusBadRequest, "Invalid file upload")
			return
		default:
			f, err := header.Open()
			if err != nil {
				respondError(c, http.StatusBadRequest, "Invalid file upload")
				return
			}
			defer f.Close()
			file = &services.Attachment{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        f,
			}
		}
	} else if !bindJSON(c, &req) {
		return
	}

	rec, err := h.records.Create(c.Request.Context(), middleware.Actor(c), &req, file)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusCreated, rec, "Medical record created")
}

func (h *MedicalRecordHandler) GetAttachment(c *gin.Context) {
	url, err := h.records.AttachmentURL(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"url": url})
}

// GetAccessLogs shows a patient who viewed their records.
func (h *MedicalRecordHandler) GetAccessLogs(c *gin.Context) {
	logs, err := h.accessLogs.ListForPatient(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, logs)
}
