package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/RyanBlaney/phase-skew-monitor/internal/daq"
)

// Store persists acquisition sessions and their per-block skew results.
// Writes are atomic per call; a Store is safe for serial use from the
// acquisition pipeline plus concurrent readers.
type Store interface {
	// CreateSession records the start of an acquisition run and returns
	// its identifier. config may be a string, []byte, or any
	// JSON-serializable value; it is stored verbatim for later review.
	CreateSession(ctx context.Context, device daq.DeviceInfo, policy string, config any) (sessionID int64, err error)

	// Session retrieves one session by ID.
	Session(ctx context.Context, id int64) (*Session, error)

	// Sessions returns all stored sessions ordered by start time.
	Sessions(ctx context.Context) ([]*Session, error)

	// AppendResult stores the skew measurement of one processed block.
	AppendResult(ctx context.Context, sessionID int64, rec SkewRecord) error

	// ResultsForSession returns a session's skew rows in block order.
	ResultsForSession(ctx context.Context, sessionID int64) ([]SkewRecord, error)

	// Close releases database resources. Safe to call more than once.
	Close() error
}
