// Package storage defines the ingestion journal interface and its implementations.
package storage

import (
	"context"
	"errors"

	"ordercsv/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Storage is the interface for all persistence operations.
type Storage interface {
	CreateRun(ctx context.Context, run *model.Run) error
	FinishRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, scope string, limit int) ([]model.Run, error)

	Close() error
}
