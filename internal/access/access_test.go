package access

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/models"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		role models.Role
		op   Operation
		want bool
	}{
		{models.RoleClient, EventCreate, true},
		{models.RoleManager, EventCreate, false},
		{models.RoleManager, EventApprove, true},
		{models.RoleClient, EventApprove, false},
		{models.RoleSponsor, SponsorshipRespond, true},
		{models.RoleManager, SponsorshipRespond, false},
		{models.RoleChiefCoordinator, AnalyticsSystem, true},
		{models.RoleManager, AnalyticsSystem, false},
		{models.RoleEmployee, AttendanceRecord, true},
		{models.RoleEmployee, Operation("unknown"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Allowed(tc.role, tc.op), "%s %s", tc.role, tc.op)
	}
}

func TestEveryOperationHasARole(t *testing.T) {
	for op, roles := range Table {
		require.NotEmpty(t, roles, op)
		for _, r := range roles {
			assert.True(t, r.Valid(), "%s lists unknown role %s", op, r)
		}
	}
}

func TestPermissions(t *testing.T) {
	perms := Permissions(models.RoleSponsor)
	assert.Contains(t, perms, SponsorshipRespond)
	assert.Contains(t, perms, ProfileRead)
	assert.NotContains(t, perms, EventCreate)
	assert.True(t, sort.SliceIsSorted(perms, func(i, j int) bool { return perms[i] < perms[j] }))
}
