package modifications

import (
	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

// Handler handles modification request endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a modification handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Propose handles POST /events/modify (manager).
func (h *Handler) Propose(c *gin.Context) {
	var in ProposeInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	m, err := h.svc.Propose(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, m)
}

// Respond handles POST /events/respond (client).
func (h *Handler) Respond(c *gin.Context) {
	var in RespondInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	m, err := h.svc.Respond(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}

// ListForClient handles GET /events/modifications (client).
func (h *Handler) ListForClient(c *gin.Context) {
	list, err := h.svc.ListForClient(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// ListProposed handles GET /admin/modifications (manager).
func (h *Handler) ListProposed(c *gin.Context) {
	list, err := h.svc.ListProposed(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
