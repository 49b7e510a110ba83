package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

func (s *Store) RecordEmail(_ context.Context, l *models.EmailLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RecordEmail"); err != nil {
		return err
	}
	l.ID = s.newUUID()
	l.CreatedAt = s.now()
	cp := *l
	s.emailLogs[l.ID] = &cp
	return nil
}

func (s *Store) GetEmailLog(_ context.Context, id uuid.UUID) (*models.EmailLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.emailLogs[id]
	if !ok {
		return nil, apperr.NotFound("email log not found")
	}
	cp := *l
	return &cp, nil
}

func (s *Store) ListEmailLogs(_ context.Context, f models.EmailLogFilter) ([]models.EmailLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListEmailLogs"); err != nil {
		return nil, err
	}
	list := []models.EmailLog{}
	for _, l := range s.emailLogs {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		list = append(list, *l)
	}
	sort.Slice(list, func(i, j int) bool { return s.before(list[j].ID, list[i].ID) })
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}
