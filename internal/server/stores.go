package server

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhub/backend/internal/analytics"
	"github.com/eventhub/backend/internal/assignments"
	"github.com/eventhub/backend/internal/attendance"
	"github.com/eventhub/backend/internal/catalog"
	"github.com/eventhub/backend/internal/emaillogs"
	"github.com/eventhub/backend/internal/events"
	"github.com/eventhub/backend/internal/masterdata"
	"github.com/eventhub/backend/internal/memstore"
	"github.com/eventhub/backend/internal/modifications"
	"github.com/eventhub/backend/internal/profiles"
	"github.com/eventhub/backend/internal/sponsorships"
)

// Stores bundles one repository per entity.
type Stores struct {
	Profiles      profiles.Store
	Catalog       catalog.Store
	Events        events.Store
	Modifications modifications.Store
	Sponsorships  sponsorships.Store
	MasterData    masterdata.Store
	Assignments   assignments.Store
	Attendance    attendance.Store
	Analytics     analytics.Store
	EmailLogs     emaillogs.Store
}

// PostgresStores builds pgx-backed repositories sharing pool.
func PostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Profiles:      profiles.NewRepository(pool),
		Catalog:       catalog.NewRepository(pool),
		Events:        events.NewRepository(pool),
		Modifications: modifications.NewRepository(pool),
		Sponsorships:  sponsorships.NewRepository(pool),
		MasterData:    masterdata.NewRepository(pool),
		Assignments:   assignments.NewRepository(pool),
		Attendance:    attendance.NewRepository(pool),
		Analytics:     analytics.NewRepository(pool),
		EmailLogs:     emaillogs.NewRepository(pool),
	}
}

// MemoryStores serves every entity from one in-memory store.
func MemoryStores(m *memstore.Store) Stores {
	return Stores{
		Profiles:      m,
		Catalog:       m,
		Events:        m,
		Modifications: m,
		Sponsorships:  m,
		MasterData:    m,
		Assignments:   m,
		Attendance:    m,
		Analytics:     m,
		EmailLogs:     m,
	}
}
