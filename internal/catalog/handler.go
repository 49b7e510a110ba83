package catalog

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/request"
	"github.com/eventhub/backend/pkg/response"
)

// Handler handles catalog endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// ListCategories handles GET /catalog/categories.
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// CreateCategory handles POST /coordinator/categories.
func (h *Handler) CreateCategory(c *gin.Context) {
	var in models.Category
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.CreateCategory(c.Request.Context(), &in); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, in)
}

// UpdateCategory handles PUT /coordinator/categories/:id.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in models.Category
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	in.ID = id
	if err := h.svc.UpdateCategory(c.Request.Context(), &in); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, in)
}

// DeleteCategory handles DELETE /coordinator/categories/:id.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSubtypes handles GET /catalog/subtypes?category_id=.
func (h *Handler) ListSubtypes(c *gin.Context) {
	categoryID, err := request.OptionalInt64Query(c, "category_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.svc.ListSubtypes(c.Request.Context(), categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// CreateSubtype handles POST /coordinator/subtypes.
func (h *Handler) CreateSubtype(c *gin.Context) {
	var in models.Subtype
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.CreateSubtype(c.Request.Context(), &in); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, in)
}

// UpdateSubtype handles PUT /coordinator/subtypes/:id.
func (h *Handler) UpdateSubtype(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in models.Subtype
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	in.ID = id
	if err := h.svc.UpdateSubtype(c.Request.Context(), &in); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, in)
}

// DeleteSubtype handles DELETE /coordinator/subtypes/:id.
func (h *Handler) DeleteSubtype(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.DeleteSubtype(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListVenues handles GET /catalog/venues.
func (h *Handler) ListVenues(c *gin.Context) {
	list, err := h.svc.ListVenues(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// GetVenue handles GET /catalog/venues/:id.
func (h *Handler) GetVenue(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	v, err := h.svc.GetVenue(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// CreateVenue handles POST /coordinator/venues.
func (h *Handler) CreateVenue(c *gin.Context) {
	var in models.Venue
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.CreateVenue(c.Request.Context(), &in); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, in)
}

// UpdateVenue handles PUT /coordinator/venues/:id.
func (h *Handler) UpdateVenue(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in models.Venue
	if err := request.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}
	in.ID = id
	if err := h.svc.UpdateVenue(c.Request.Context(), &in); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, in)
}

// DeleteVenue handles DELETE /coordinator/venues/:id.
func (h *Handler) DeleteVenue(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.DeleteVenue(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadVenueImage handles POST /coordinator/venues/:id/image (multipart, field "image").
func (h *Handler) UploadVenueImage(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "missing file (form field: image)")
		return
	}
	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	v, err := h.svc.UploadVenueImage(c.Request.Context(), id, Image{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        rc,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// VenueImageURL handles GET /catalog/venues/:id/image.
func (h *Handler) VenueImageURL(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	url, err := h.svc.VenueImageURL(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"url": url})
}

// Availability handles GET /catalog/venues/:id/availability?date=YYYY-MM-DD.
func (h *Handler) Availability(c *gin.Context) {
	id, err := request.Int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	date, err := request.DateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	a, err := h.svc.CheckAvailability(c.Request.Context(), id, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}
