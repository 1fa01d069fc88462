// Package state records LoopLang run history in SQLite.
//
// Each execution started from the CLI can be stored as a Run: the program
// text, its initial and final bindings, statistics and outcome. The history
// powers the `history` commands.
package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// RunStatus is the outcome of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// ErrRunNotFound is returned when no run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousID is returned when an ID prefix matches more than one run.
var ErrAmbiguousID = errors.New("ambiguous run id prefix")

// Run is one recorded execution.
type Run struct {
	ID         string
	Source     string // file path, "<stdin>" or "<repl>"
	SourceHash string
	Program    string
	Arithmetic string
	Status     RunStatus
	Error      string
	Inputs     map[string]string // decimal values
	Outputs    map[string]string // decimal values
	Statements int64
	Iterations int64
	StartedAt  time.Time
	Duration   time.Duration
}

// Store persists runs.
type Store interface {
	// RecordRun stores run, assigning an ID if it has none.
	RecordRun(ctx context.Context, run *Run) error
	// GetRun returns the run whose ID equals or starts with id.
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns the most recent runs, newest first. limit <= 0 means
	// no limit.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	// PruneRuns deletes all but the newest keep runs and returns the number
	// deleted.
	PruneRuns(ctx context.Context, keep int) (int64, error)
	Close() error
}

// HashSource returns the hex SHA-256 of program text.
func HashSource(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}
