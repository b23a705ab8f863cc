package mock

import (
	"context"
	"sync"

	"github.com/abrezinsky/lightsout/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SetError = errors.New("disk full")
//	st := store.Open(ctx, log, mockRepo)
//	// writes are now dropped with a warning
type Repository struct {
	repository.FullRepository

	GetError    error
	SetError    error
	DeleteError error
	KeysError   error
	PingError   error

	mu   sync.Mutex
	sets map[string]int
}

// NewRepository creates a new mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
		sets:           make(map[string]int),
	}
}

func (m *Repository) Get(ctx context.Context, key string) (string, error) {
	if m.GetError != nil {
		return "", m.GetError
	}
	return m.FullRepository.Get(ctx, key)
}

func (m *Repository) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.sets[key]++
	m.mu.Unlock()
	if m.SetError != nil {
		return m.SetError
	}
	return m.FullRepository.Set(ctx, key, value)
}

func (m *Repository) Delete(ctx context.Context, key string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	return m.FullRepository.Delete(ctx, key)
}

func (m *Repository) Keys(ctx context.Context) ([]string, error) {
	if m.KeysError != nil {
		return nil, m.KeysError
	}
	return m.FullRepository.Keys(ctx)
}

func (m *Repository) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.FullRepository.Ping(ctx)
}

// SetCalls returns how many writes were attempted for key, failed ones included
func (m *Repository) SetCalls(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[key]
}
