package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

// StatusRequest is the body for PATCH /admin/event-status.
type StatusRequest struct {
	EventID uuid.UUID          `json:"event_id" validate:"required"`
	Status  models.EventStatus `json:"status" validate:"required"`
}

// AssignManagerRequest is the body for PATCH /coordinator/events/assign-manager.
type AssignManagerRequest struct {
	EventID   uuid.UUID `json:"event_id" validate:"required"`
	ManagerID uuid.UUID `json:"manager_id" validate:"required"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an event handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /events (client).
func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	e, err := h.svc.Create(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e)
}

// ListMine handles GET /events/my-events (client).
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.svc.ListMine(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	v, err := h.svc.Get(c.Request.Context(), middleware.Profile(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// ListManaged handles GET /admin/events (manager).
func (h *Handler) ListManaged(c *gin.Context) {
	list, err := h.svc.ListManaged(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Approve handles PATCH /admin/events/:id/approve (manager).
func (h *Handler) Approve(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	e, err := h.svc.Approve(c.Request.Context(), middleware.Profile(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// UpdateStatus handles PATCH /admin/event-status (manager).
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	e, err := h.svc.UpdateStatus(c.Request.Context(), middleware.Profile(c), req.EventID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// AssignManager handles PATCH /coordinator/events/assign-manager (chief coordinator).
func (h *Handler) AssignManager(c *gin.Context) {
	var req AssignManagerRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	e, err := h.svc.AssignManager(c.Request.Context(), req.EventID, req.ManagerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}
