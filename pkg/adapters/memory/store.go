package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/tinct/pkg/ports"
)

// Store implements ports.TemplateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store seeded with templates (name -> source).
func NewStore(templates map[string]string) *Store {
	data := make(map[string]string, len(templates))
	maps.Copy(data, templates)
	return &Store{
		data: data,
	}
}

// Load retrieves a template source.
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.data[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ports.ErrTemplateNotFound, name)
	}
	return src, nil
}

// List returns all template names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.data)), nil // Deterministic order
}

// Save stores a template source.
func (s *Store) Save(ctx context.Context, name, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = source
	return nil
}

// Delete removes a template.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}
