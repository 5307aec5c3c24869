package rooms

import (
	"context"
	"errors"
	"sync"
)

// ErrCodeTaken signals a room code collision on insert.
var ErrCodeTaken = errors.New("room code already taken")

// Store persists room codes.
type Store interface {
	// CreateRoom inserts a new room code. Returns ErrCodeTaken when the
	// code is already present.
	CreateRoom(ctx context.Context, code string) error
	// RoomExists reports whether the code is present.
	RoomExists(ctx context.Context, code string) (bool, error)
	// Close releases the store's resources.
	Close(ctx context.Context) error
}

// MemoryStore keeps room codes in process memory. It backs deployments
// without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	codes map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]struct{})}
}

// CreateRoom records the code, rejecting duplicates with ErrCodeTaken.
func (s *MemoryStore) CreateRoom(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code]; ok {
		return ErrCodeTaken
	}
	s.codes[code] = struct{}{}
	return nil
}

// RoomExists reports whether the code was created.
func (s *MemoryStore) RoomExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[code]
	return ok, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }
