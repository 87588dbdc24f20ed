// Package history records finished generations so they can be listed and
// reproduced later from their seed.
//
// Two stores are provided: [MemoryStore] for the CLI and tests, and
// [MongoStore] for a long-running server.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 20

// Record describes one generated wallpaper. Together with the source set,
// Seed and the layout fields reproduce the image exactly.
type Record struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Density       float64       `json:"density"`
	SizeVariation float64       `json:"size_variation"`
	Seed          uint64        `json:"seed"`
	Rounds        int           `json:"rounds"`
	Background    string        `json:"background"`
	Format        string        `json:"format"`
	Backend       string        `json:"backend"`
	Images        int           `json:"images"`
	Placements    int           `json:"placements"`
	Bytes         int           `json:"bytes"`
	Duration      time.Duration `json:"duration_ns"`
	CacheHit      bool          `json:"cache_hit"`
}

// NewRecord returns a Record with a fresh ID and the current time.
func NewRecord() Record {
	return Record{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// Store persists records.
type Store interface {
	// Insert saves r. An empty ID or zero CreatedAt is filled in.
	Insert(ctx context.Context, r Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close(ctx context.Context) error
}

// normalize fills the fields Insert promises to fill.
func normalize(r Record) Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
