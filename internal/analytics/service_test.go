package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/memstore"
	"github.com/eventhub/backend/internal/models"
)

var _ Store = (*memstore.Store)(nil)

func seed(t *testing.T) (*memstore.Store, *models.Profile, *models.Profile) {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()

	cat := &models.Category{Name: "Corporate"}
	require.NoError(t, st.CreateCategory(ctx, cat))
	sub := &models.Subtype{CategoryID: cat.ID, Name: "Conference"}
	require.NoError(t, st.CreateSubtype(ctx, sub))

	mk := func(role models.Role, status models.VerificationStatus) *models.Profile {
		p := &models.Profile{ID: uuid.New(), Email: uuid.NewString() + "@example.com", FullName: "x", Role: role, VerificationStatus: status}
		require.NoError(t, st.CreateProfile(ctx, p))
		return p
	}
	client := mk(models.RoleClient, models.VerificationVerified)
	manager := mk(models.RoleManager, models.VerificationVerified)
	other := mk(models.RoleManager, models.VerificationVerified)
	sponsor := mk(models.RoleSponsor, models.VerificationVerified)
	mk(models.RoleEmployee, models.VerificationPending)

	event := func(m *models.Profile, status models.EventStatus) *models.Event {
		e := &models.Event{Title: "e", ClientID: client.ID, ManagerID: &m.ID, SubtypeID: sub.ID, EventDate: models.MustDate("2025-06-01"), Status: status}
		require.NoError(t, st.CreateEvent(ctx, e))
		return e
	}
	mine := event(manager, models.EventInProgress)
	event(manager, models.EventConsideration)
	theirs := event(other, models.EventConsideration)

	require.NoError(t, st.CreateSponsorship(ctx, &models.Sponsorship{EventID: mine.ID, SponsorID: sponsor.ID, Amount: 2500, Status: models.SponsorshipAccepted}, manager.ID))
	require.NoError(t, st.CreateSponsorship(ctx, &models.Sponsorship{EventID: theirs.ID, SponsorID: sponsor.ID, Amount: 900, Status: models.SponsorshipPending}, other.ID))
	return st, manager, other
}

func TestDashboardOnlyCountsOwnEvents(t *testing.T) {
	st, manager, _ := seed(t)

	d, err := NewService(st).Dashboard(context.Background(), manager)
	require.NoError(t, err)

	assert.Equal(t, 1, d.Events[models.EventInProgress])
	assert.Equal(t, 1, d.Events[models.EventConsideration])
	assert.Contains(t, d.Events, models.EventCancelled)
	assert.Equal(t, 0, d.Events[models.EventCancelled])
	assert.Equal(t, 1, d.Sponsorships.ByStatus[models.SponsorshipAccepted])
	assert.Zero(t, d.Sponsorships.ByStatus[models.SponsorshipPending])
	assert.InDelta(t, 2500.0, d.Sponsorships.AcceptedAmount, 0.001)
	assert.Zero(t, d.PendingModifications)
}

func TestOverviewCountsEverything(t *testing.T) {
	st, _, _ := seed(t)

	o, err := NewService(st).Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, o.Users[models.RoleManager])
	assert.Equal(t, 0, o.Users[models.RoleChiefCoordinator])
	assert.Equal(t, 1, o.PendingVerifications)
	assert.Equal(t, 2, o.Events[models.EventConsideration])
	assert.Equal(t, 2, o.Sponsorships.ByStatus[models.SponsorshipAccepted]+o.Sponsorships.ByStatus[models.SponsorshipPending])
	assert.Zero(t, o.PendingMasterRequests)
}

func TestOverviewFailsWhenAReadFails(t *testing.T) {
	st, _, _ := seed(t)
	st.FailNext("CountEventsByStatus", errors.New("boom"))

	_, err := NewService(st).Overview(context.Background())
	assert.Error(t, err)
}
