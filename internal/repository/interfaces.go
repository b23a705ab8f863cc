package repository

import "context"

// StateRepository stores opaque values under string keys. Set replaces the
// whole value atomically.
type StateRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// HealthRepository reports storage health
type HealthRepository interface {
	Ping(ctx context.Context) error
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	StateRepository
	HealthRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
