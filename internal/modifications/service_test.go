package modifications

import (
	"context"
	"errors"
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
	store   *memstore.Store
	rec     *notifytest.Recorder
	svc     *Service
	client  *models.Profile
	manager *models.Profile
	event   *models.Event
	hall    *models.Venue
	garden  *models.Venue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()

	cat := &models.Category{Name: "Weddings"}
	require.NoError(t, st.CreateCategory(ctx, cat))
	sub := &models.Subtype{CategoryID: cat.ID, Name: "Reception"}
	require.NoError(t, st.CreateSubtype(ctx, sub))
	hall := &models.Venue{Name: "Hall", Address: "1 Main St", Capacity: 200}
	require.NoError(t, st.CreateVenue(ctx, hall))
	garden := &models.Venue{Name: "Garden", Address: "2 Park Rd", Capacity: 80}
	require.NoError(t, st.CreateVenue(ctx, garden))

	client := &models.Profile{ID: uuid.New(), Email: "c@example.com", FullName: "Client", Role: models.RoleClient, VerificationStatus: models.VerificationVerified}
	manager := &models.Profile{ID: uuid.New(), Email: "m@example.com", FullName: "Manager", Role: models.RoleManager, VerificationStatus: models.VerificationVerified, CategoryID: &cat.ID}
	require.NoError(t, st.CreateProfile(ctx, client))
	require.NoError(t, st.CreateProfile(ctx, manager))

	e := &models.Event{
		Title:     "Reception",
		ClientID:  client.ID,
		ManagerID: &manager.ID,
		SubtypeID: sub.ID,
		VenueID:   &hall.ID,
		EventDate: models.MustDate("2025-06-01"),
		Status:    models.EventConsideration,
	}
	require.NoError(t, st.CreateEvent(ctx, e))

	rec := &notifytest.Recorder{}
	return &fixture{
		store: st, rec: rec, svc: NewService(st, st, st, rec, nil),
		client: client, manager: manager, event: e, hall: hall, garden: garden,
	}
}

func (f *fixture) propose(t *testing.T, venue int64, date string) *models.ModificationRequest {
	t.Helper()
	d := models.MustDate(date)
	m, err := f.svc.Propose(context.Background(), f.manager, ProposeInput{EventID: f.event.ID, ProposedVenueID: venue, ProposedDate: &d})
	require.NoError(t, err)
	return m
}

func TestProposeCreatesPendingRequest(t *testing.T) {
	f := newFixture(t)

	m := f.propose(t, f.garden.ID, "2025-06-08")

	assert.Equal(t, models.ModificationPending, m.Status)
	assert.Equal(t, f.manager.ID, m.ProposedBy)
	assert.Equal(t, []string{notify.ModificationProposed}, f.rec.PushesTo(f.client.ID))
}

func TestProposeUnavailableVenueInsertsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := &models.Event{
		Title:     "Other",
		ClientID:  f.client.ID,
		SubtypeID: f.event.SubtypeID,
		VenueID:   &f.garden.ID,
		EventDate: models.MustDate("2025-06-08"),
		Status:    models.EventInProgress,
	}
	require.NoError(t, f.store.CreateEvent(ctx, other))

	d := models.MustDate("2025-06-08")
	_, err := f.svc.Propose(ctx, f.manager, ProposeInput{EventID: f.event.ID, ProposedVenueID: f.garden.ID, ProposedDate: &d})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	list, err := f.svc.ListProposed(ctx, f.manager)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProposeChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := models.MustDate("2025-06-08")
	outsider := &models.Profile{ID: uuid.New(), Role: models.RoleManager}

	_, err := f.svc.Propose(ctx, outsider, ProposeInput{EventID: f.event.ID, ProposedVenueID: f.garden.ID, ProposedDate: &d})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Propose(ctx, f.manager, ProposeInput{EventID: uuid.New(), ProposedVenueID: f.garden.ID, ProposedDate: &d})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Propose(ctx, f.manager, ProposeInput{EventID: f.event.ID, ProposedVenueID: 999, ProposedDate: &d})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Propose(ctx, f.manager, ProposeInput{EventID: f.event.ID, ProposedVenueID: f.garden.ID})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, f.store.UpdateEventStatus(ctx, f.event.ID, models.EventConsideration, models.EventCancelled))
	_, err = f.svc.Propose(ctx, f.manager, ProposeInput{EventID: f.event.ID, ProposedVenueID: f.garden.ID, ProposedDate: &d})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestAcceptAppliesProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.propose(t, f.garden.ID, "2025-06-08")

	resolved, err := f.svc.Respond(ctx, f.client, RespondInput{RequestID: m.ID, Action: ActionAccept})
	require.NoError(t, err)
	assert.Equal(t, models.ModificationAccepted, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	e, err := f.store.GetEvent(ctx, f.event.ID)
	require.NoError(t, err)
	require.NotNil(t, e.VenueID)
	assert.Equal(t, f.garden.ID, *e.VenueID)
	assert.Equal(t, "2025-06-08", e.EventDate.String())
	assert.Equal(t, []string{notify.ModificationResolved}, f.rec.PushesTo(f.manager.ID))
}

func TestAcceptFailureLeavesRequestPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.propose(t, f.garden.ID, "2025-06-08")
	f.store.FailNext("ApplyModification", errors.New("connection reset"))

	_, err := f.svc.Respond(ctx, f.client, RespondInput{RequestID: m.ID, Action: ActionAccept})
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	stored, err := f.store.GetModification(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModificationPending, stored.Status)
	e, err := f.store.GetEvent(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, f.hall.ID, *e.VenueID)
	assert.Equal(t, "2025-06-01", e.EventDate.String())
}

func TestAcceptRefusedWhenVenueTakenSinceProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.propose(t, f.garden.ID, "2025-06-08")

	other := &models.Event{
		Title:     "Other",
		ClientID:  f.client.ID,
		SubtypeID: f.event.SubtypeID,
		VenueID:   &f.garden.ID,
		EventDate: models.MustDate("2025-06-08"),
		Status:    models.EventInProgress,
	}
	require.NoError(t, f.store.CreateEvent(ctx, other))

	_, err := f.svc.Respond(ctx, f.client, RespondInput{RequestID: m.ID, Action: ActionAccept})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	stored, err := f.store.GetModification(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModificationPending, stored.Status)
	e, err := f.store.GetEvent(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, f.hall.ID, *e.VenueID)
	assert.Equal(t, "2025-06-01", e.EventDate.String())
}

func TestAcceptRefusedOnClosedEvent(t *testing.T) {
	for _, closed := range []models.EventStatus{models.EventCancelled, models.EventCompleted} {
		t.Run(string(closed), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			m := f.propose(t, f.garden.ID, "2025-06-08")
			if closed == models.EventCompleted {
				require.NoError(t, f.store.UpdateEventStatus(ctx, f.event.ID, models.EventConsideration, models.EventInProgress))
				require.NoError(t, f.store.UpdateEventStatus(ctx, f.event.ID, models.EventInProgress, models.EventCompleted))
			} else {
				require.NoError(t, f.store.UpdateEventStatus(ctx, f.event.ID, models.EventConsideration, closed))
			}

			_, err := f.svc.Respond(ctx, f.client, RespondInput{RequestID: m.ID, Action: ActionAccept})
			assert.True(t, apperr.Is(err, apperr.KindInvalidState))

			e, err := f.store.GetEvent(ctx, f.event.ID)
			require.NoError(t, err)
			assert.Equal(t, closed, e.Status)
			assert.Equal(t, "2025-06-01", e.EventDate.String())

			err = f.store.ApplyModification(ctx, m.ID)
			assert.True(t, apperr.Is(err, apperr.KindInvalidState))
		})
	}
}

func TestRespondChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.propose(t, f.garden.ID, "2025-06-08")
	stranger := &models.Profile{ID: uuid.New(), Role: models.RoleClient}

	_, err := f.svc.Respond(ctx, f.client, RespondInput{RequestID: uuid.New(), Action: ActionAccept})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Respond(ctx, stranger, RespondInput{RequestID: m.ID, Action: ActionAccept})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Respond(ctx, f.client, RespondInput{RequestID: m.ID, Action: "maybe"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	stored, err := f.store.GetModification(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModificationPending, stored.Status)
}

func TestRejectTwiceIsInvalidState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.propose(t, f.garden.ID, "2025-06-08")

	rejected, err := f.svc.Respond(ctx, f.client, RespondInput{RequestID: m.ID, Action: ActionReject})
	require.NoError(t, err)
	assert.Equal(t, models.ModificationRejected, rejected.Status)

	_, err = f.svc.Respond(ctx, f.client, RespondInput{RequestID: m.ID, Action: ActionReject})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	_, err = f.svc.Respond(ctx, f.client, RespondInput{RequestID: m.ID, Action: ActionAccept})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	e, err := f.store.GetEvent(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, f.hall.ID, *e.VenueID)
}

func TestListsAreScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.propose(t, f.garden.ID, "2025-06-08")

	mine, err := f.svc.ListForClient(ctx, f.client)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Garden", mine[0].ProposedVenueName)
	assert.Equal(t, "Reception", mine[0].EventTitle)

	none, err := f.svc.ListForClient(ctx, &models.Profile{ID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, none)
}
