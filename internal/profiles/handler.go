package profiles

import (
	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

// Handler handles profile and verification endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a profile handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Onboard handles POST /profile. Only a valid credential is required.
func (h *Handler) Onboard(c *gin.Context) {
	var in OnboardInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	sub := middleware.Subject(c)
	p, err := h.svc.Onboard(c.Request.Context(), sub.ID, sub.Email, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// Me handles GET /profile/me.
func (h *Handler) Me(c *gin.Context) {
	response.OK(c, h.svc.Me(middleware.Profile(c)))
}

// PendingEmployees handles GET /admin/employees/pending (manager).
func (h *Handler) PendingEmployees(c *gin.Context) {
	list, err := h.svc.PendingEmployees(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Employees handles GET /admin/employees (manager).
func (h *Handler) Employees(c *gin.Context) {
	list, err := h.svc.Employees(c.Request.Context(), middleware.Profile(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// VerifyEmployee handles PATCH /admin/employees/verify (manager).
func (h *Handler) VerifyEmployee(c *gin.Context) {
	var in VerifyInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.svc.VerifyEmployee(c.Request.Context(), middleware.Profile(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// Sponsors handles GET /admin/sponsors (manager).
func (h *Handler) Sponsors(c *gin.Context) {
	list, err := h.svc.Sponsors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// ListUsers handles GET /coordinator/users?role= (chief coordinator).
func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.svc.ListUsers(c.Request.Context(), models.Role(c.Query("role")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// PendingUsers handles GET /coordinator/users/pending (chief coordinator).
func (h *Handler) PendingUsers(c *gin.Context) {
	list, err := h.svc.PendingUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// VerifyUser handles PATCH /coordinator/users/verify (chief coordinator).
func (h *Handler) VerifyUser(c *gin.Context) {
	var in VerifyInput
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.svc.VerifyUser(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}
