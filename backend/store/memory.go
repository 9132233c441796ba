package store

import (
	"context"
	"sync"
)

type collection struct {
	docs  map[string]document
	order []string // insertion order
}

// MemoryStore keeps documents in process memory. Each call locks the whole store, but there is
// no way to group several calls, matching a store without multi-document transactions.
type MemoryStore struct {
	mutex       sync.RWMutex
	collections map[string]*collection
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*collection)}
}

func (s *MemoryStore) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]document)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Create(ctx context.Context, collection string, v interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, id, err := prepareNew(v)
	if err != nil {
		return "", err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	c := s.coll(collection)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = doc
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	return decodeInto(doc, dest)
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	doc, ok := s.coll(collection).docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.apply(patch)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c := s.coll(collection)
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, docID := range c.order {
		if docID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) query(collection string, filters []Filter) []document {
	c, ok := s.collections[collection]
	if !ok {
		return []document{}
	}
	docs := make([]document, 0, len(c.order))
	for _, id := range c.order {
		if doc := c.docs[id]; doc.matches(filters) {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (s *MemoryStore) Query(ctx context.Context, collection string, dest interface{}, filters []Filter, order ...Ordering) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	docs := s.query(collection, filters)
	sortDocuments(docs, order)
	return decodeInto(docs, dest)
}

func (s *MemoryStore) Count(ctx context.Context, collection string, filters []Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.query(collection, filters)), nil
}
