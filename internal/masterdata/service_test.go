package masterdata

import (
	"context"
	"encoding/json"
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

func setup(t *testing.T) (*Service, *memstore.Store, *notifytest.Recorder) {
	t.Helper()
	st := memstore.New()
	rec := &notifytest.Recorder{}
	return NewService(st, rec, nil), st, rec
}

var (
	manager     = &models.Profile{ID: uuid.New(), Role: models.RoleManager}
	coordinator = &models.Profile{ID: uuid.New(), Role: models.RoleChiefCoordinator}
)

func submit(t *testing.T, svc *Service, typ models.MasterDataType, payload string) *models.MasterDataRequest {
	t.Helper()
	r, err := svc.Create(context.Background(), manager, CreateInput{Type: typ, Payload: json.RawMessage(payload)})
	require.NoError(t, err)
	return r
}

func TestCreateValidatesPayloadPerType(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		typ     models.MasterDataType
		payload string
		ok      bool
	}{
		{"venue", models.MasterDataVenue, `{"name":"Dock 5","address":"5 Pier Rd","capacity":400}`, true},
		{"venue without capacity", models.MasterDataVenue, `{"name":"Dock 5","address":"5 Pier Rd"}`, false},
		{"venue without address", models.MasterDataVenue, `{"name":"Dock 5","capacity":10}`, false},
		{"category", models.MasterDataCategory, `{"name":"Sports"}`, true},
		{"category without name", models.MasterDataCategory, `{"description":"x"}`, false},
		{"subtype", models.MasterDataSubtype, `{"name":"Marathon","category_id":1}`, true},
		{"subtype without category", models.MasterDataSubtype, `{"name":"Marathon"}`, false},
		{"unknown type", "speaker", `{"name":"x"}`, false},
		{"malformed payload", models.MasterDataCategory, `["name"]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := svc.Create(ctx, manager, CreateInput{Type: tt.typ, Payload: json.RawMessage(tt.payload)})
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, models.MasterDataPending, r.Status)
				return
			}
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestApproveInsertsReferenceRow(t *testing.T) {
	svc, st, rec := setup(t)
	ctx := context.Background()
	r := submit(t, svc, models.MasterDataVenue, `{"name":"Dock 5","address":"5 Pier Rd","capacity":400}`)

	done, err := svc.Process(ctx, coordinator, ProcessInput{RequestID: r.ID, Action: ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, models.MasterDataApproved, done.Status)
	require.NotNil(t, done.ReviewedBy)
	assert.Equal(t, coordinator.ID, *done.ReviewedBy)

	venues, err := st.ListVenues(ctx)
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "Dock 5", venues[0].Name)
	assert.Equal(t, []string{notify.MasterRequestReviewed}, rec.PushesTo(manager.ID))

	_, err = svc.Process(ctx, coordinator, ProcessInput{RequestID: r.ID, Action: ActionApprove})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestFailedInsertLeavesRequestPending(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()
	r := submit(t, svc, models.MasterDataVenue, `{"name":"Dock 5","address":"5 Pier Rd","capacity":400}`)
	st.FailNext("InsertVenue", errors.New("disk full"))

	_, err := svc.Process(ctx, coordinator, ProcessInput{RequestID: r.ID, Action: ActionApprove})
	require.Error(t, err)

	stored, err := st.GetMasterRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MasterDataPending, stored.Status)
	venues, err := st.ListVenues(ctx)
	require.NoError(t, err)
	assert.Empty(t, venues)
}

func TestApproveSubtypeForMissingCategoryStaysPending(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()
	r := submit(t, svc, models.MasterDataSubtype, `{"name":"Marathon","category_id":42}`)

	_, err := svc.Process(ctx, coordinator, ProcessInput{RequestID: r.ID, Action: ActionApprove})
	require.Error(t, err)

	stored, err := st.GetMasterRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MasterDataPending, stored.Status)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	r := submit(t, svc, models.MasterDataCategory, `{"name":"Sports"}`)

	_, err := svc.Process(ctx, coordinator, ProcessInput{RequestID: r.ID, Action: ActionReject, RejectionReason: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	done, err := svc.Process(ctx, coordinator, ProcessInput{RequestID: r.ID, Action: ActionReject, RejectionReason: "Already covered by Athletics"})
	require.NoError(t, err)
	assert.Equal(t, models.MasterDataRejected, done.Status)
	assert.Equal(t, "Already covered by Athletics", done.RejectionReason)
}

func TestProcessUnknownRequestAndAction(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Process(ctx, coordinator, ProcessInput{RequestID: uuid.New(), Action: ActionApprove})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	r := submit(t, svc, models.MasterDataCategory, `{"name":"Sports"}`)
	_, err = svc.Process(ctx, coordinator, ProcessInput{RequestID: r.ID, Action: "defer"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestQueueOrdering(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	first := submit(t, svc, models.MasterDataCategory, `{"name":"A"}`)
	second := submit(t, svc, models.MasterDataCategory, `{"name":"B"}`)
	third := submit(t, svc, models.MasterDataCategory, `{"name":"C"}`)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, third.ID, pending[2].ID)

	_, err = svc.Process(ctx, coordinator, ProcessInput{RequestID: second.ID, Action: ActionApprove})
	require.NoError(t, err)
	_, err = svc.Process(ctx, coordinator, ProcessInput{RequestID: first.ID, Action: ActionReject, RejectionReason: "duplicate"})
	require.NoError(t, err)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, r := range history {
		assert.NotEqual(t, models.MasterDataPending, r.Status)
	}

	mine, err := svc.Mine(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
