// Package session keeps the signed-in user of each browser session. The
// session id travels in a signed cookie; the user record lives in a Store.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Record is one stored session. Data holds the JSON encoded user.
type Record struct {
	ID        string
	Data      []byte
	ExpiresAt time.Time
}

// Store persists session records. Load returns ErrNotFound for unknown or
// expired ids.
type Store interface {
	Load(ctx context.Context, id string) (Record, error)
	Save(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores backed by an external database.
type Pinger interface {
	Ping(ctx context.Context) error
}

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	Now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: map[string]Record{},
		Now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	if !rec.ExpiresAt.After(s.Now()) {
		s.mu.Lock()
		delete(s.records, id)
		s.mu.Unlock()
		return Record{}, ErrNotFound
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	rec.Data = append([]byte(nil), rec.Data...)
	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	now := s.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, rec := range s.records {
		if !rec.ExpiresAt.After(now) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}
