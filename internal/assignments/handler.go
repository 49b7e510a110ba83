package assignments

import (
	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

// Handler handles staffing endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an assignment handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Assign handles POST /admin/assign-staff (manager).
func (h *Handler) Assign(c *gin.Context) {
	var in AssignInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	a, err := h.svc.Assign(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// ListForEvent handles GET /admin/staff?event_id= (manager).
func (h *Handler) ListForEvent(c *gin.Context) {
	eventID, err := request.UUIDQuery(c, "event_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.svc.ListForEvent(c.Request.Context(), middleware.Profile(c), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Mine handles GET /employee/assignments (employee).
func (h *Handler) Mine(c *gin.Context) {
	list, err := h.svc.Mine(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Respond handles PATCH /employee/assignments/respond (employee).
func (h *Handler) Respond(c *gin.Context) {
	var in RespondInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	a, err := h.svc.Respond(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}
