// Package storage persists named byte entries such as the reviewer's
// persisted state.
package storage

import (
	"context"
	"errors"
)

//go:generate mockgen -source=storage.go -destination=../mocks/storage/mock_storage.go -package=mock_storage

// ErrNotFound is returned by Load when no entry has been saved under the name.
var ErrNotFound = errors.New("storage entry not found")

// Storage reads and writes whole entries by name.
type Storage interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}

// Driver names a Storage implementation.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverMySQL  Driver = "mysql"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)
