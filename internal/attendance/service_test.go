package attendance

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eventhub/backend/internal/memstore"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

var _ Store = (*memstore.Store)(nil)

type fixture struct {
	store      *memstore.Store
	svc        *Service
	manager    *models.Profile
	employee   *models.Profile
	event      *models.Event
	assignment *models.Assignment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	cat := &models.Category{Name: "Security"}
	require.NoError(t, st.CreateCategory(ctx, cat))
	sub := &models.Subtype{CategoryID: cat.ID, Name: "Concert"}
	require.NoError(t, st.CreateSubtype(ctx, sub))

	manager := &models.Profile{ID: uuid.New(), FullName: "Manager", Role: models.RoleManager, VerificationStatus: models.VerificationVerified}
	employee := &models.Profile{ID: uuid.New(), FullName: "Eve Guard", Role: models.RoleEmployee, VerificationStatus: models.VerificationVerified}
	require.NoError(t, st.CreateProfile(ctx, manager))
	require.NoError(t, st.CreateProfile(ctx, employee))

	e := &models.Event{
		Title: "Concert", ClientID: uuid.New(), ManagerID: &manager.ID, SubtypeID: sub.ID,
		EventDate: models.MustDate("2025-11-20"), Status: models.EventInProgress,
	}
	require.NoError(t, st.CreateEvent(ctx, e))
	a := &models.Assignment{EventID: e.ID, EmployeeID: employee.ID, RoleDescription: "Door", Status: models.AssignmentPending}
	require.NoError(t, st.CreateAssignment(ctx, a))

	return &fixture{
		store: st, svc: NewService(st, st, st, nil),
		manager: manager, employee: employee, event: e, assignment: a,
	}
}

func (f *fixture) accept(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.UpdateAssignmentStatus(context.Background(), f.assignment.ID, models.AssignmentPending, models.AssignmentAccepted))
}

func TestCheckInRequiresAcceptedAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.employee, f.event.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	stranger := &models.Profile{ID: uuid.New(), Role: models.RoleEmployee}
	_, err = f.svc.CheckIn(ctx, stranger, f.event.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.CheckIn(ctx, f.employee, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCheckInOutCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.accept(t)

	_, err := f.svc.CheckOut(ctx, f.employee, f.event.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	in, err := f.svc.CheckIn(ctx, f.employee, f.event.ID)
	require.NoError(t, err)
	assert.True(t, in.Open())

	_, err = f.svc.CheckIn(ctx, f.employee, f.event.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	out, err := f.svc.CheckOut(ctx, f.employee, f.event.ID)
	require.NoError(t, err)
	assert.False(t, out.Open())

	_, list, err := f.svc.List(ctx, f.manager, f.event.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Eve Guard", list[0].EmployeeName)
}

func TestCheckInOnlyWhileInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.accept(t)
	require.NoError(t, f.store.UpdateEventStatus(ctx, f.event.ID, models.EventInProgress, models.EventCompleted))

	_, err := f.svc.CheckIn(ctx, f.employee, f.event.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestListRequiresAssignedManager(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.List(context.Background(), &models.Profile{ID: uuid.New(), Role: models.RoleManager}, f.event.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestExportWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.accept(t)
	_, err := f.svc.CheckIn(ctx, f.employee, f.event.ID)
	require.NoError(t, err)

	e, list, err := f.svc.List(ctx, f.manager, f.event.ID)
	require.NoError(t, err)
	buf, err := Export(e, list)
	require.NoError(t, err)

	book, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Concert (2025-11-20)", rows[0][0])
	assert.Equal(t, exportHeaders, rows[1])
	assert.Equal(t, "Eve Guard", rows[2][0])
}
