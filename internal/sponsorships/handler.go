package sponsorships

import (
	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

// Handler handles sponsorship endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a sponsorship handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Offer handles POST /admin/sponsorships (manager).
func (h *Handler) Offer(c *gin.Context) {
	var in OfferInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	sp, err := h.svc.Offer(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	if in.ID == nil {
		response.Created(c, sp)
		return
	}
	response.OK(c, sp)
}

// ListForManager handles GET /admin/sponsorships (manager).
func (h *Handler) ListForManager(c *gin.Context) {
	list, err := h.svc.ListForManager(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// ListForSponsor handles GET /sponsors/requests (sponsor).
func (h *Handler) ListForSponsor(c *gin.Context) {
	list, err := h.svc.ListForSponsor(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Respond handles PATCH /sponsors/respond (sponsor).
func (h *Handler) Respond(c *gin.Context) {
	var in RespondInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	sp, err := h.svc.Respond(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sp)
}

// History handles GET /sponsorships/:id/history (manager, sponsor).
func (h *Handler) History(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.svc.History(c.Request.Context(), middleware.Profile(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
