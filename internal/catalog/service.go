package catalog

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/storage"
	"github.com/eventhub/backend/pkg/validate"
)

// ImageStore keeps venue images. *storage.S3 implements it.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

var errNoImageStore = errors.New("image storage is not configured")

// Service manages reference data.
type Service struct {
	store  Store
	images ImageStore
	logger *zap.Logger
}

// NewService creates a catalog service. images may be nil when no bucket is configured.
func NewService(store Store, images ImageStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, images: images, logger: logger}
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := validate.Struct(c); err != nil {
		return err
	}
	return s.store.CreateCategory(ctx, c)
}

func (s *Service) UpdateCategory(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := validate.Struct(c); err != nil {
		return err
	}
	return s.store.UpdateCategory(ctx, c)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// ListSubtypes returns subtypes, optionally of one category.
func (s *Service) ListSubtypes(ctx context.Context, categoryID *int64) ([]models.Subtype, error) {
	return s.store.ListSubtypes(ctx, categoryID)
}

func (s *Service) CreateSubtype(ctx context.Context, st *models.Subtype) error {
	st.Name = strings.TrimSpace(st.Name)
	if err := validate.Struct(st); err != nil {
		return err
	}
	return s.store.CreateSubtype(ctx, st)
}

func (s *Service) UpdateSubtype(ctx context.Context, st *models.Subtype) error {
	st.Name = strings.TrimSpace(st.Name)
	if err := validate.Struct(st); err != nil {
		return err
	}
	return s.store.UpdateSubtype(ctx, st)
}

func (s *Service) DeleteSubtype(ctx context.Context, id int64) error {
	return s.store.DeleteSubtype(ctx, id)
}

func (s *Service) ListVenues(ctx context.Context) ([]models.Venue, error) {
	return s.store.ListVenues(ctx)
}

func (s *Service) GetVenue(ctx context.Context, id int64) (*models.Venue, error) {
	return s.store.GetVenue(ctx, id)
}

func (s *Service) CreateVenue(ctx context.Context, v *models.Venue) error {
	v.Name = strings.TrimSpace(v.Name)
	v.ImageKey = ""
	if err := validate.Struct(v); err != nil {
		return err
	}
	return s.store.CreateVenue(ctx, v)
}

// UpdateVenue changes name, address and capacity. The image is managed separately.
func (s *Service) UpdateVenue(ctx context.Context, v *models.Venue) error {
	v.Name = strings.TrimSpace(v.Name)
	if err := validate.Struct(v); err != nil {
		return err
	}
	return s.store.UpdateVenue(ctx, v)
}

// DeleteVenue removes the venue and, best effort, its image.
func (s *Service) DeleteVenue(ctx context.Context, id int64) error {
	v, err := s.store.GetVenue(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteVenue(ctx, id); err != nil {
		return err
	}
	if v.ImageKey != "" && s.images != nil {
		if err := s.images.Delete(ctx, v.ImageKey); err != nil {
			s.logger.Warn("venue image delete failed", zap.Int64("venue_id", id), zap.String("key", v.ImageKey), zap.Error(err))
		}
	}
	return nil
}

// Image is an uploaded venue image.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadVenueImage stores an image for the venue and records its key.
func (s *Service) UploadVenueImage(ctx context.Context, venueID int64, img Image) (*models.Venue, error) {
	if s.images == nil {
		return nil, apperr.Upstream(errNoImageStore)
	}
	if img.Size > storage.MaxImageSize {
		return nil, apperr.Validation("image exceeds the 5MB limit")
	}
	if !storage.ValidateImageType(img.ContentType, img.Filename) {
		return nil, apperr.Validation("invalid file type: only jpg, png and webp images are allowed")
	}
	contentType := storage.ContentTypeForFilename(img.Filename)
	if _, ok := storage.AllowedImageTypes[img.ContentType]; ok {
		contentType = img.ContentType
	}

	v, err := s.store.GetVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	key := storage.VenueImageKey(venueID, img.Filename)
	if err := s.images.Upload(ctx, key, contentType, img.Body, img.Size); err != nil {
		s.logger.Error("venue image upload failed", zap.Int64("venue_id", venueID), zap.String("key", key), zap.Error(err))
		return nil, apperr.Upstream(err)
	}
	if err := s.store.SetVenueImage(ctx, venueID, key); err != nil {
		return nil, err
	}
	if v.ImageKey != "" && v.ImageKey != key {
		if err := s.images.Delete(ctx, v.ImageKey); err != nil {
			s.logger.Warn("old venue image delete failed", zap.String("key", v.ImageKey), zap.Error(err))
		}
	}
	v.ImageKey = key
	return v, nil
}

// VenueImageURL returns a short-lived download link for the venue image.
func (s *Service) VenueImageURL(ctx context.Context, venueID int64) (string, error) {
	v, err := s.store.GetVenue(ctx, venueID)
	if err != nil {
		return "", err
	}
	if v.ImageKey == "" {
		return "", apperr.NotFound("venue has no image")
	}
	if s.images == nil {
		return "", apperr.Upstream(errNoImageStore)
	}
	url, err := s.images.PresignDownload(ctx, v.ImageKey)
	if err != nil {
		return "", apperr.Upstream(err)
	}
	return url, nil
}

// Availability is the answer to a venue availability query.
type Availability struct {
	VenueID   int64       `json:"venue_id"`
	Date      models.Date `json:"date"`
	Available bool        `json:"available"`
}

// CheckAvailability reports whether the venue is free on date.
func (s *Service) CheckAvailability(ctx context.Context, venueID int64, date models.Date) (*Availability, error) {
	if _, err := s.store.GetVenue(ctx, venueID); err != nil {
		return nil, err
	}
	free, err := s.store.CheckVenueAvailability(ctx, venueID, date)
	if err != nil {
		return nil, err
	}
	return &Availability{VenueID: venueID, Date: date, Available: free}, nil
}
