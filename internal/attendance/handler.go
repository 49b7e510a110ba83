package attendance

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler handles attendance endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// CheckIn handles POST /employee/attendance/check-in (employee).
func (h *Handler) CheckIn(c *gin.Context) {
	var in EventInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	a, err := h.svc.CheckIn(c.Request.Context(), middleware.Profile(c), in.EventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// CheckOut handles POST /employee/attendance/check-out (employee).
func (h *Handler) CheckOut(c *gin.Context) {
	var in EventInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	a, err := h.svc.CheckOut(c.Request.Context(), middleware.Profile(c), in.EventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// List handles GET /admin/attendance?event_id= (manager).
func (h *Handler) List(c *gin.Context) {
	eventID, err := request.UUIDQuery(c, "event_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	_, list, err := h.svc.List(c.Request.Context(), middleware.Profile(c), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Export handles GET /admin/attendance/export?event_id= (manager).
func (h *Handler) Export(c *gin.Context) {
	eventID, err := request.UUIDQuery(c, "event_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	e, list, err := h.svc.List(c.Request.Context(), middleware.Profile(c), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	buf, err := Export(e, list)
	if err != nil {
		h.logger.Error("attendance export failed", zap.String("event_id", eventID.String()), zap.Error(err))
		response.Internal(c, "failed to build export")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s.xlsx"`, eventID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
