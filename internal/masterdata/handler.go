package masterdata

import (
	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

// Handler handles master-data request endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a master-data handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /admin/master-requests (manager).
func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	r, err := h.svc.Create(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, r)
}

// Mine handles GET /admin/master-requests (manager).
func (h *Handler) Mine(c *gin.Context) {
	list, err := h.svc.Mine(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// List handles GET /coordinator/master-requests?view=pending|history.
func (h *Handler) List(c *gin.Context) {
	var err error
	var list interface{}
	switch c.DefaultQuery("view", "pending") {
	case "pending":
		list, err = h.svc.Pending(c.Request.Context())
	case "history":
		list, err = h.svc.History(c.Request.Context())
	default:
		response.BadRequest(c, "view must be pending or history")
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Process handles PATCH /coordinator/master-requests/process.
func (h *Handler) Process(c *gin.Context) {
	var in ProcessInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	r, err := h.svc.Process(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}
