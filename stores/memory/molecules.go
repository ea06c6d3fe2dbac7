package memory

import (
	"context"
	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs/tables"
	"sort"
	"time"

	"github.com/google/uuid"
)

type moleculeStore Store

var _ stores.MoleculeStore = (*moleculeStore)(nil)

func copyHistory(h *tables.MoleculeGenerationHistory) *tables.MoleculeGenerationHistory {
	c := *h
	c.User = nil
	c.GeneratedMolecules = make([]*tables.GeneratedMolecule, 0, len(h.GeneratedMolecules))
	for _, m := range h.GeneratedMolecules {
		mc := *m
		c.GeneratedMolecules = append(c.GeneratedMolecules, &mc)
	}
	return &c
}

func (s *moleculeStore) Create(ctx context.Context, history *tables.MoleculeGenerationHistory) (*tables.MoleculeGenerationHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[history.UserId]; !ok {
		return nil, lib.ErrNotFound
	}

	if history.Id == uuid.Nil {
		history.Id = uuid.New()
	}
	var last time.Time
	for _, h := range s.histories {
		if h.UserId == history.UserId && h.CreatedAt.After(last) {
			last = h.CreatedAt
		}
	}
	history.CreatedAt = (*Store)(s).tick(last)
	for _, m := range history.GeneratedMolecules {
		m.Id = uuid.New()
		m.HistoryId = history.Id
	}

	s.histories[history.Id] = copyHistory(history)
	return copyHistory(history), nil
}

func (s *moleculeStore) GetByID(ctx context.Context, id uuid.UUID) (*tables.MoleculeGenerationHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.histories[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return copyHistory(h), nil
}

func (s *moleculeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*tables.MoleculeGenerationHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*tables.MoleculeGenerationHistory, 0)
	for _, h := range s.histories {
		if h.UserId == userID {
			out = append(out, copyHistory(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *moleculeStore) Delete(ctx context.Context, id uuid.UUID) (*tables.MoleculeGenerationHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.histories[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	delete(s.histories, id)
	return copyHistory(h), nil
}
