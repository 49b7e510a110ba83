// Package memstore is an in-memory implementation of every repository
// contract. It backs package tests and the server's APP_STORE=memory mode.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

// Store holds all tables behind one mutex.
type Store struct {
	mu sync.Mutex

	profiles      map[uuid.UUID]*models.Profile
	categories    map[int64]*models.Category
	subtypes      map[int64]*models.Subtype
	venues        map[int64]*models.Venue
	events        map[uuid.UUID]*models.Event
	modifications map[uuid.UUID]*models.ModificationRequest
	sponsorships  map[uuid.UUID]*models.Sponsorship
	revisions     []models.SponsorshipRevision
	requests      map[uuid.UUID]*models.MasterDataRequest
	assignments   map[uuid.UUID]*models.Assignment
	attendance    []*models.Attendance
	emailLogs     map[uuid.UUID]*models.EmailLog

	// insertion order, used for stable sorting
	order  map[uuid.UUID]int64
	seq    int64
	nextID int64

	failures map[string]error
	now      func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		profiles:      make(map[uuid.UUID]*models.Profile),
		categories:    make(map[int64]*models.Category),
		subtypes:      make(map[int64]*models.Subtype),
		venues:        make(map[int64]*models.Venue),
		events:        make(map[uuid.UUID]*models.Event),
		modifications: make(map[uuid.UUID]*models.ModificationRequest),
		sponsorships:  make(map[uuid.UUID]*models.Sponsorship),
		requests:      make(map[uuid.UUID]*models.MasterDataRequest),
		assignments:   make(map[uuid.UUID]*models.Assignment),
		emailLogs:     make(map[uuid.UUID]*models.EmailLog),
		order:         make(map[uuid.UUID]int64),
		failures:      make(map[string]error),
		now:           time.Now,
	}
}

// FailNext makes the next call of the named operation return err. Operation
// names are method names; InsertCategory, InsertSubtype and InsertVenue name
// the reference-row insert inside ApproveMasterRequest.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// fail consumes a pending failure. Callers hold the lock.
func (s *Store) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return apperr.Upstream(err)
	}
	return nil
}

// newUUID allocates an id and remembers its insertion order. Callers hold the lock.
func (s *Store) newUUID() uuid.UUID {
	id := uuid.New()
	s.seq++
	s.order[id] = s.seq
	return id
}

func (s *Store) newInt() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) before(a, b uuid.UUID) bool {
	return s.order[a] < s.order[b]
}
