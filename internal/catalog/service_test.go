package catalog

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/memstore"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

var _ Store = (*memstore.Store)(nil)

type fakeImages struct {
	objects map[string]string
	deleted []string
	failPut error
}

func newFakeImages() *fakeImages { return &fakeImages{objects: map[string]string{}} }

func (f *fakeImages) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if f.failPut != nil {
		return f.failPut
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = string(b)
	return nil
}

func (f *fakeImages) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func TestCategoryAndSubtypeCRUD(t *testing.T) {
	st := memstore.New()
	svc := NewService(st, nil, nil)
	ctx := context.Background()

	cat := &models.Category{Name: "  Sports "}
	require.NoError(t, svc.CreateCategory(ctx, cat))
	assert.Equal(t, "Sports", cat.Name)

	assert.True(t, apperr.Is(svc.CreateCategory(ctx, &models.Category{}), apperr.KindValidation))
	assert.True(t, apperr.Is(svc.CreateCategory(ctx, &models.Category{Name: "sports"}), apperr.KindConflict))

	sub := &models.Subtype{CategoryID: cat.ID, Name: "Marathon"}
	require.NoError(t, svc.CreateSubtype(ctx, sub))
	assert.True(t, apperr.Is(svc.CreateSubtype(ctx, &models.Subtype{Name: "Relay"}), apperr.KindValidation))
	assert.True(t, apperr.Is(svc.CreateSubtype(ctx, &models.Subtype{CategoryID: 999, Name: "Relay"}), apperr.KindValidation))

	list, err := svc.ListSubtypes(ctx, &cat.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.True(t, apperr.Is(svc.DeleteCategory(ctx, cat.ID), apperr.KindConflict))
	require.NoError(t, svc.DeleteSubtype(ctx, sub.ID))
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.True(t, apperr.Is(svc.DeleteCategory(ctx, cat.ID), apperr.KindNotFound))
}

func TestVenueImageLifecycle(t *testing.T) {
	st := memstore.New()
	images := newFakeImages()
	svc := NewService(st, images, nil)
	ctx := context.Background()

	v := &models.Venue{Name: "Hall", Address: "1 Main St", Capacity: 120}
	require.NoError(t, svc.CreateVenue(ctx, v))

	_, err := svc.VenueImageURL(ctx, v.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	updated, err := svc.UploadVenueImage(ctx, v.ID, Image{Filename: "front.png", ContentType: "image/png", Size: 4, Body: strings.NewReader("png!")})
	require.NoError(t, err)
	assert.Equal(t, "venues/"+strconv.FormatInt(v.ID, 10)+"/front.png", updated.ImageKey)
	assert.Equal(t, "png!", images.objects[updated.ImageKey])

	url, err := svc.VenueImageURL(ctx, v.ID)
	require.NoError(t, err)
	assert.Contains(t, url, updated.ImageKey)

	_, err = svc.UploadVenueImage(ctx, v.ID, Image{Filename: "side.jpg", Size: 3, Body: strings.NewReader("jpg")})
	require.NoError(t, err)
	assert.Equal(t, []string{updated.ImageKey}, images.deleted)

	_, err = svc.UploadVenueImage(ctx, v.ID, Image{Filename: "notes.txt", ContentType: "text/plain", Size: 1, Body: strings.NewReader("x")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.UploadVenueImage(ctx, v.ID, Image{Filename: "huge.png", Size: 6 << 20, Body: strings.NewReader("")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	images.failPut = errors.New("bucket unreachable")
	_, err = svc.UploadVenueImage(ctx, v.ID, Image{Filename: "new.png", Size: 1, Body: strings.NewReader("x")})
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestUploadWithoutImageStore(t *testing.T) {
	st := memstore.New()
	svc := NewService(st, nil, nil)
	v := &models.Venue{Name: "Hall", Address: "1 Main St", Capacity: 120}
	require.NoError(t, svc.CreateVenue(context.Background(), v))

	_, err := svc.UploadVenueImage(context.Background(), v.ID, Image{Filename: "a.png", Size: 1, Body: strings.NewReader("x")})
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestCheckAvailability(t *testing.T) {
	st := memstore.New()
	svc := NewService(st, nil, nil)
	ctx := context.Background()

	cat := &models.Category{Name: "Corporate"}
	require.NoError(t, st.CreateCategory(ctx, cat))
	sub := &models.Subtype{CategoryID: cat.ID, Name: "Conference"}
	require.NoError(t, st.CreateSubtype(ctx, sub))
	v := &models.Venue{Name: "Hall", Address: "1 Main St", Capacity: 120}
	require.NoError(t, svc.CreateVenue(ctx, v))
	date := models.MustDate("2025-09-10")
	require.NoError(t, st.CreateEvent(ctx, &models.Event{Title: "Summit", SubtypeID: sub.ID, VenueID: &v.ID, EventDate: date, Status: models.EventInProgress}))

	a, err := svc.CheckAvailability(ctx, v.ID, date)
	require.NoError(t, err)
	assert.False(t, a.Available)

	a, err = svc.CheckAvailability(ctx, v.ID, models.MustDate("2025-09-11"))
	require.NoError(t, err)
	assert.True(t, a.Available)

	_, err = svc.CheckAvailability(ctx, 404, date)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
