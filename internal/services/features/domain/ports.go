package domain

import (
	"context"
	"io"

	"eogfeat/internal/core/aggregate"
)

// RunnerPort processes a batch of recordings; individual failures land in Skipped
type RunnerPort interface {
	Run(ctx context.Context, recs []Recording) (BatchResult, error)
}

// ExtractorPort processes one recording from an already open reader
type ExtractorPort interface {
	ExtractOne(ctx context.Context, rec Recording, r io.Reader) (Row, error)
}

// WriterPort persists the rows of one run
type WriterPort interface {
	Save(ctx context.Context, runID string, rows []Row) error
}

// ReaderPort reads persisted rows
type ReaderPort interface {
	List(ctx context.Context, f Filter) ([]Stored, int, error)
	Summary(ctx context.Context) ([]aggregate.ConditionSummary, error)
}

// Opener opens the bytes of a recording
type Opener func(Recording) (io.ReadCloser, error)

// SchemaPort bootstraps the storage the writer and reader use
type SchemaPort interface {
	EnsureSchema(ctx context.Context) error
}
