package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("approve: %w", InvalidState("Only events in consideration can be approved."))
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.True(t, Is(err, KindInvalidState))
	assert.Equal(t, "Only events in consideration can be approved.", Message(err))
}

func TestUnclassifiedIsUpstream(t *testing.T) {
	err := errors.New("connection refused")
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, Status(KindOf(err)))
	assert.Equal(t, "connection refused", Message(err))
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Upstream(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "duplicate key", err.Error())
}

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindInvalidState:    http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindProfileMissing:  http.StatusForbidden,
		KindForbidden:       http.StatusForbidden,
		KindPendingApproval: http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindUpstream:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, Status(kind), kind.String())
	}
}
