package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesOrdered(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_schema.sql", names[0])
	assert.IsNonDecreasing(t, names)
}

func TestFunctionsMigrationDefinesStoreRPCs(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/002_functions.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "check_venue_availability")
	assert.Contains(t, string(raw), "apply_modification_request")
}

func TestVenueBookingIndexIsPartial(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/004_venue_bookings.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "CREATE UNIQUE INDEX IF NOT EXISTS")
	assert.Contains(t, string(raw), "status <> 'cancelled'")
}

func TestFunctionsMigrationRechecksOnApply(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/002_functions.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ERRCODE = 'EH001'")
	assert.Contains(t, string(raw), "ERRCODE = 'EH002'")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
