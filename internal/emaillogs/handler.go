package emaillogs

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

// Handler handles email log HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an email logs handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /coordinator/email-logs?status=&limit=.
func (h *Handler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.Error(c, apperr.Validation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	logs, err := h.svc.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, logs)
}

// Resend handles POST /coordinator/email-logs/:id/resend.
func (h *Handler) Resend(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.Resend(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "resend queued"})
}
