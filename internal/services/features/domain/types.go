// Package domain defines the types and ports of the feature extraction service
package domain

import (
	"time"

	"eogfeat/internal/core/features"
	"eogfeat/internal/core/recording"
)

// Recording identifies one input file; Source is its path or another stable name
type Recording struct {
	Subject   string             `json:"subject"`
	Condition features.Condition `json:"condition"`
	Source    string             `json:"source"`
}

// Row is a feature record plus where it came from
type Row struct {
	features.Record
	Source string          `json:"source"`
	Stats  recording.Stats `json:"stats"`
}

// Skipped is a recording that produced no row
type Skipped struct {
	Recording Recording `json:"recording"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason"`
}

// BatchResult is the outcome of one run; Records and Skipped keep input order
type BatchResult struct {
	RunID   string    `json:"run_id"`
	Records []Row     `json:"records"`
	Skipped []Skipped `json:"skipped"`
}

// Features returns the bare feature records
func (b BatchResult) Features() []features.Record {
	out := make([]features.Record, len(b.Records))
	for i, r := range b.Records {
		out[i] = r.Record
	}
	return out
}

// ByCondition splits the rows per condition, keeping order within each
func (b BatchResult) ByCondition() map[features.Condition][]features.Record {
	out := make(map[features.Condition][]features.Record, 3)
	for _, r := range b.Records {
		out[r.Condition] = append(out[r.Condition], r.Record)
	}
	return out
}

// Stored is a persisted row
type Stored struct {
	Row
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows stored rows; zero Condition means any
type Filter struct {
	Condition features.Condition
	Subject   string
	Limit     int
	Offset    int
}
