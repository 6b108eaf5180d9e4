package memstore

import (
	"context"
	"sort"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"

	"github.com/google/uuid"
)

func (s *Store) CreatePaperType(_ context.Context, p *model.PaperType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.paperTypes {
		if existing.Name == p.Name {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = now(), now()
	c := *p
	s.paperTypes[p.ID] = &c
	return nil
}

func (s *Store) FindPaperType(_ context.Context, id uuid.UUID) (*model.PaperType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.paperTypes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *Store) ListPaperTypes(context.Context) ([]model.PaperType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PaperType, 0, len(s.paperTypes))
	for _, p := range s.paperTypes {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateItemType(_ context.Context, it *model.ItemType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.itemTypes {
		if existing.Name == it.Name {
			return repository.ErrDuplicate
		}
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	it.CreatedAt = now()
	c := *it
	s.itemTypes[it.ID] = &c
	return nil
}

func (s *Store) FindItemType(_ context.Context, id uuid.UUID) (*model.ItemType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.itemTypes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *it
	return &c, nil
}

func (s *Store) ListItemTypes(context.Context) ([]model.ItemType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ItemType, 0, len(s.itemTypes))
	for _, it := range s.itemTypes {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateProgram(_ context.Context, p *model.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.programs {
		if existing.Name == p.Name {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now()
	c := *p
	c.ItemType = nil
	s.programs[p.ID] = &c
	return nil
}

func (s *Store) FindProgram(_ context.Context, id uuid.UUID) (*model.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *Store) ListPrograms(context.Context) ([]model.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Program, 0, len(s.programs))
	for _, p := range s.programs {
		c := *p
		if it, ok := s.itemTypes[p.ItemTypeID]; ok {
			itc := *it
			c.ItemType = &itc
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
