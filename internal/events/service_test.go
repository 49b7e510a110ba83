package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/memstore"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/internal/notify"
	"github.com/eventhub/backend/internal/notify/notifytest"
	"github.com/eventhub/backend/pkg/apperr"
)

var _ Store = (*memstore.Store)(nil)

type fixture struct {
	store    *memstore.Store
	rec      *notifytest.Recorder
	svc      *Service
	subtype  *models.Subtype
	venue    *models.Venue
	client   *models.Profile
	manager  *models.Profile
	category int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	rec := &notifytest.Recorder{}

	cat := &models.Category{Name: "Corporate"}
	require.NoError(t, st.CreateCategory(ctx, cat))
	sub := &models.Subtype{CategoryID: cat.ID, Name: "Gala dinner"}
	require.NoError(t, st.CreateSubtype(ctx, sub))
	venue := &models.Venue{Name: "Harbour Hall", Address: "1 Quay St", Capacity: 300}
	require.NoError(t, st.CreateVenue(ctx, venue))

	f := &fixture{store: st, rec: rec, subtype: sub, venue: venue, category: cat.ID}
	f.client = f.profile(t, models.RoleClient, nil)
	f.manager = f.profile(t, models.RoleManager, &cat.ID)
	f.svc = NewService(st, st, st, rec, nil)
	return f
}

func (f *fixture) profile(t *testing.T, role models.Role, category *int64) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ID:                 uuid.New(),
		Email:              string(role) + "@example.com",
		FullName:           "Test " + string(role),
		Role:               role,
		VerificationStatus: models.VerificationVerified,
		CategoryID:         category,
	}
	require.NoError(t, f.store.CreateProfile(context.Background(), p))
	return p
}

func (f *fixture) create(t *testing.T, client *models.Profile, title string) *models.Event {
	t.Helper()
	date := models.MustDate("2025-06-01")
	e, err := f.svc.Create(context.Background(), client, CreateInput{Title: title, SubtypeID: f.subtype.ID, EventDate: &date})
	require.NoError(t, err)
	return e
}

func TestCreateAssignsManagerAndNotifies(t *testing.T) {
	f := newFixture(t)

	e := f.create(t, f.client, "Gala")

	assert.Equal(t, models.EventConsideration, e.Status)
	assert.Equal(t, f.client.ID, e.ClientID)
	require.NotNil(t, e.ManagerID)
	assert.Equal(t, f.manager.ID, *e.ManagerID)
	require.Len(t, f.rec.Confirmations, 1)
	assert.Equal(t, "Gala", f.rec.Confirmations[0].Title)
	assert.Equal(t, []string{notify.EventCreated}, f.rec.PushesTo(f.manager.ID))
}

func TestCreateWithoutManagerLeavesEventUnassigned(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.UpdateVerification(context.Background(), f.manager.ID, models.VerificationVerified, models.VerificationRejected))

	e := f.create(t, f.client, "Gala")
	assert.Nil(t, e.ManagerID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := models.MustDate("2025-06-01")
	missing := int64(999)

	tests := []struct {
		name string
		in   CreateInput
		kind apperr.Kind
	}{
		{"missing title", CreateInput{SubtypeID: f.subtype.ID, EventDate: &date}, apperr.KindValidation},
		{"blank title", CreateInput{Title: "   ", SubtypeID: f.subtype.ID, EventDate: &date}, apperr.KindValidation},
		{"missing subtype", CreateInput{Title: "Gala", EventDate: &date}, apperr.KindValidation},
		{"missing date", CreateInput{Title: "Gala", SubtypeID: f.subtype.ID}, apperr.KindValidation},
		{"unknown subtype", CreateInput{Title: "Gala", SubtypeID: missing, EventDate: &date}, apperr.KindValidation},
		{"unknown venue", CreateInput{Title: "Gala", SubtypeID: f.subtype.ID, EventDate: &date, VenueID: &missing}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.client, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
	assert.Empty(t, f.rec.Confirmations)
}

func TestCreateRejectsBookedVenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := models.MustDate("2025-06-01")
	in := CreateInput{Title: "First", SubtypeID: f.subtype.ID, EventDate: &date, VenueID: &f.venue.ID}

	_, err := f.svc.Create(ctx, f.client, in)
	require.NoError(t, err)

	in.Title = "Second"
	_, err = f.svc.Create(ctx, f.client, in)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestListMineOnlyReturnsOwnEventsNewestFirst(t *testing.T) {
	f := newFixture(t)
	other := f.profile(t, models.RoleClient, nil)

	first := f.create(t, f.client, "First")
	second := f.create(t, f.client, "Second")
	f.create(t, other, "Someone else's")

	list, err := f.svc.ListMine(context.Background(), f.client)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "Gala dinner", list[0].SubtypeName)
	for _, v := range list {
		assert.Equal(t, f.client.ID, v.ClientID)
	}
}

func TestGetAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.create(t, f.client, "Gala")
	stranger := f.profile(t, models.RoleClient, nil)
	coordinator := f.profile(t, models.RoleChiefCoordinator, nil)

	for _, p := range []*models.Profile{f.client, f.manager, coordinator} {
		_, err := f.svc.Get(ctx, p, e.ID)
		assert.NoError(t, err, string(p.Role))
	}
	_, err := f.svc.Get(ctx, stranger, e.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestApproveScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.create(t, f.client, "Gala")

	approved, err := f.svc.Approve(ctx, f.manager, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventInProgress, approved.Status)
	assert.Contains(t, f.rec.PushesTo(f.client.ID), notify.EventApproved)

	_, err = f.svc.Approve(ctx, f.manager, e.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, "Only events in consideration can be approved.", err.Error())
}

func TestApproveBlockedByPendingModification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.create(t, f.client, "Gala")
	require.NoError(t, f.store.CreateModification(ctx, &models.ModificationRequest{
		EventID:         e.ID,
		ProposedBy:      f.manager.ID,
		ProposedVenueID: f.venue.ID,
		ProposedDate:    models.MustDate("2025-07-01"),
		Status:          models.ModificationPending,
	}))

	_, err := f.svc.Approve(ctx, f.manager, e.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	stored, err := f.store.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventConsideration, stored.Status)
}

func TestApproveRequiresAssignedManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.create(t, f.client, "Gala")
	other := f.profile(t, models.RoleManager, &f.category)

	_, err := f.svc.Approve(ctx, other, e.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Approve(ctx, f.manager, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateStatusFollowsTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.create(t, f.client, "Gala")

	_, err := f.svc.UpdateStatus(ctx, f.manager, e.ID, "archived")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.UpdateStatus(ctx, f.manager, e.ID, models.EventCompleted)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	_, err = f.svc.UpdateStatus(ctx, f.manager, e.ID, models.EventInProgress)
	require.NoError(t, err)
	done, err := f.svc.UpdateStatus(ctx, f.manager, e.ID, models.EventCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, done.Status)

	_, err = f.svc.UpdateStatus(ctx, f.manager, e.ID, models.EventCancelled)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestAssignManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.create(t, f.client, "Gala")
	replacement := f.profile(t, models.RoleManager, &f.category)

	updated, err := f.svc.AssignManager(ctx, e.ID, replacement.ID)
	require.NoError(t, err)
	assert.True(t, updated.ManagedBy(replacement.ID))
	assert.Contains(t, f.rec.PushesTo(replacement.ID), notify.EventManagerAssigned)

	_, err = f.svc.AssignManager(ctx, e.ID, f.client.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.AssignManager(ctx, e.ID, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, f.store.UpdateEventStatus(ctx, e.ID, models.EventConsideration, models.EventCancelled))
	_, err = f.svc.AssignManager(ctx, e.ID, f.manager.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}
