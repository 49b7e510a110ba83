package analytics

import (
	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/pkg/response"
)

// Handler serves dashboards.
type Handler struct {
	svc *Service
}

// NewHandler creates an analytics handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Dashboard handles GET /admin/analytics (manager).
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, d)
}

// SystemOverview handles GET /analytics/system-overview (chief coordinator).
func (h *Handler) SystemOverview(c *gin.Context) {
	o, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o)
}
