package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/paperchat/paperchat/models"
)

// Store is a volatile, process-local document store. Contents are lost on
// restart, which matches the service's non-durability contract.
type Store struct {
	documents map[string]models.Document
	mu        sync.RWMutex
}

// NewStore creates an empty in-memory document store.
func NewStore() *Store {
	return &Store{documents: make(map[string]models.Document)}
}

func (s *Store) Get(ctx context.Context, id string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return models.Document{}, &models.DocumentNotFoundError{ID: id}
	}
	return doc, nil
}

func (s *Store) Put(ctx context.Context, doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return &models.DocumentNotFoundError{ID: id}
	}
	delete(s.documents, id)
	return nil
}

func (s *Store) List(ctx context.Context) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}
