package sponsorships

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
	store   *memstore.Store
	rec     *notifytest.Recorder
	svc     *Service
	manager *models.Profile
	sponsor *models.Profile
	client  *models.Profile
	event   *models.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()

	cat := &models.Category{Name: "Festivals"}
	require.NoError(t, st.CreateCategory(ctx, cat))
	sub := &models.Subtype{CategoryID: cat.ID, Name: "Music"}
	require.NoError(t, st.CreateSubtype(ctx, sub))

	f := &fixture{store: st, rec: &notifytest.Recorder{}}
	f.client = f.profile(t, models.RoleClient, "")
	f.manager = f.profile(t, models.RoleManager, "")
	f.sponsor = f.profile(t, models.RoleSponsor, "Acme Ltd")

	f.event = &models.Event{
		Title:     "Summer Fest",
		ClientID:  f.client.ID,
		ManagerID: &f.manager.ID,
		SubtypeID: sub.ID,
		EventDate: models.MustDate("2025-08-15"),
		Status:    models.EventInProgress,
	}
	require.NoError(t, st.CreateEvent(ctx, f.event))
	f.svc = NewService(st, st, st, f.rec, nil)
	return f
}

func (f *fixture) profile(t *testing.T, role models.Role, company string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ID:                 uuid.New(),
		Email:              string(role) + "@example.com",
		FullName:           "Test " + string(role),
		Role:               role,
		VerificationStatus: models.VerificationVerified,
		CompanyName:        company,
	}
	require.NoError(t, f.store.CreateProfile(context.Background(), p))
	return p
}

func amount(v float64) *float64 { return &v }

func (f *fixture) offer(t *testing.T, value float64) *models.Sponsorship {
	t.Helper()
	sp, err := f.svc.Offer(context.Background(), f.manager, OfferInput{
		EventID: &f.event.ID, SponsorID: &f.sponsor.ID, Amount: amount(value), ManagerNote: "Main stage banner",
	})
	require.NoError(t, err)
	return sp
}

func TestOfferCreatesPendingSponsorship(t *testing.T) {
	f := newFixture(t)

	sp := f.offer(t, 5000)

	assert.Equal(t, models.SponsorshipPending, sp.Status)
	assert.Equal(t, 5000.0, sp.Amount)
	assert.Equal(t, []string{notify.SponsorshipOffered}, f.rec.PushesTo(f.sponsor.ID))
}

func TestOfferValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   OfferInput
		kind apperr.Kind
	}{
		{"missing event", OfferInput{SponsorID: &f.sponsor.ID, Amount: amount(1)}, apperr.KindValidation},
		{"missing sponsor", OfferInput{EventID: &f.event.ID, Amount: amount(1)}, apperr.KindValidation},
		{"missing amount", OfferInput{EventID: &f.event.ID, SponsorID: &f.sponsor.ID}, apperr.KindValidation},
		{"negative amount", OfferInput{EventID: &f.event.ID, SponsorID: &f.sponsor.ID, Amount: amount(-5)}, apperr.KindValidation},
		{"zero amount", OfferInput{EventID: &f.event.ID, SponsorID: &f.sponsor.ID, Amount: amount(0)}, apperr.KindValidation},
		{"not a sponsor", OfferInput{EventID: &f.event.ID, SponsorID: &f.client.ID, Amount: amount(1)}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Offer(ctx, f.manager, tt.in)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}

	other := f.profile(t, models.RoleManager, "")
	_, err := f.svc.Offer(ctx, other, OfferInput{EventID: &f.event.ID, SponsorID: &f.sponsor.ID, Amount: amount(1)})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestDuplicateOfferConflicts(t *testing.T) {
	f := newFixture(t)
	f.offer(t, 5000)

	_, err := f.svc.Offer(context.Background(), f.manager, OfferInput{
		EventID: &f.event.ID, SponsorID: &f.sponsor.ID, Amount: amount(7000),
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestSponsorNegotiatesAndHistoryKeepsOriginalAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sp := f.offer(t, 5000)

	updated, err := f.svc.Respond(ctx, f.sponsor, RespondInput{
		SponsorshipID: sp.ID, Action: models.SponsorshipNegotiating, Amount: amount(3500), SponsorNote: "Budget is tighter this year",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SponsorshipNegotiating, updated.Status)
	assert.Equal(t, 3500.0, updated.Amount)
	assert.Equal(t, "Budget is tighter this year", updated.SponsorNote)
	assert.Equal(t, []string{notify.SponsorshipAnswered}, f.rec.PushesTo(f.manager.ID))

	history, err := f.svc.History(ctx, f.manager, sp.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 5000.0, history[0].Amount)
	assert.Equal(t, models.SponsorshipPending, history[0].Status)
	assert.Equal(t, f.manager.ID, history[0].ChangedBy)
	assert.Equal(t, 3500.0, history[1].Amount)
	assert.Equal(t, f.sponsor.ID, history[1].ChangedBy)
}

func TestCounterOfferDefaultsToPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sp := f.offer(t, 5000)
	_, err := f.svc.Respond(ctx, f.sponsor, RespondInput{SponsorshipID: sp.ID, Action: models.SponsorshipNegotiating, Amount: amount(3000)})
	require.NoError(t, err)

	countered, err := f.svc.Offer(ctx, f.manager, OfferInput{ID: &sp.ID, Amount: amount(4000)})
	require.NoError(t, err)
	assert.Equal(t, models.SponsorshipPending, countered.Status)
	assert.Equal(t, 4000.0, countered.Amount)
	assert.Equal(t, "Main stage banner", countered.ManagerNote)
}

func TestRespondChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sp := f.offer(t, 5000)
	rival := f.profile(t, models.RoleSponsor, "Rival Inc")

	_, err := f.svc.Respond(ctx, rival, RespondInput{SponsorshipID: sp.ID, Action: models.SponsorshipAccepted})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Respond(ctx, f.sponsor, RespondInput{SponsorshipID: sp.ID, Action: models.SponsorshipPending})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Respond(ctx, f.sponsor, RespondInput{SponsorshipID: uuid.New(), Action: models.SponsorshipAccepted})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Respond(ctx, f.sponsor, RespondInput{SponsorshipID: sp.ID, Action: models.SponsorshipNegotiating, Amount: amount(0)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Offer(ctx, f.manager, OfferInput{ID: &sp.ID, Amount: amount(0)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	accepted, err := f.svc.Respond(ctx, f.sponsor, RespondInput{SponsorshipID: sp.ID, Action: models.SponsorshipAccepted})
	require.NoError(t, err)
	assert.Equal(t, models.SponsorshipAccepted, accepted.Status)

	_, err = f.svc.Respond(ctx, f.sponsor, RespondInput{SponsorshipID: sp.ID, Action: models.SponsorshipNegotiating})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	_, err = f.svc.Offer(ctx, f.manager, OfferInput{ID: &sp.ID, Amount: amount(1)})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestListsAndHistoryAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sp := f.offer(t, 5000)

	mine, err := f.svc.ListForSponsor(ctx, f.sponsor)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Summer Fest", mine[0].EventTitle)
	assert.Equal(t, "Acme Ltd", mine[0].CompanyName)

	managed, err := f.svc.ListForManager(ctx, f.manager)
	require.NoError(t, err)
	assert.Len(t, managed, 1)

	_, err = f.svc.History(ctx, f.sponsor, sp.ID)
	assert.NoError(t, err)
	_, err = f.svc.History(ctx, f.client, sp.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
