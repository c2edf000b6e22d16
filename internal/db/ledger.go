package db

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/roster-photos/internal/photos"
)

// Ledger records the outcomes of one photo run.
type Ledger struct {
	db    *DB
	runID uuid.UUID
}

var _ photos.Recorder = (*Ledger)(nil)

// StartLedger creates a run and returns a Ledger bound to it.
func (db *DB) StartLedger(ctx context.Context, input *RunInput) (*Ledger, error) {
	id, err := db.CreateRun(ctx, input)
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db, runID: id}, nil
}

// RunID returns the ID of the run being recorded.
func (l *Ledger) RunID() uuid.UUID {
	return l.runID
}

// RecordOutcome stores one player's outcome.
func (l *Ledger) RecordOutcome(ctx context.Context, outcome photos.Outcome) error {
	return l.db.RecordOutcome(ctx, l.runID, NewOutcomeInput(outcome))
}

// Finish marks the run as completed, canceled or failed depending on runErr.
// It uses a fresh context when ctx is already done so canceled runs are still closed.
func (l *Ledger) Finish(ctx context.Context, summary photos.Summary, runErr error) error {
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	return l.db.CompleteRun(ctx, l.runID, RunStatusFor(runErr), summary.OK, summary.Fail)
}

// RunStatusFor maps the error returned by a run to the stored status.
func RunStatusFor(runErr error) string {
	switch {
	case runErr == nil:
		return RunStatusCompleted
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		return RunStatusCanceled
	default:
		return RunStatusFailed
	}
}

// NewOutcomeInput converts a loop outcome into a row, storing empty strings as NULL.
func NewOutcomeInput(o photos.Outcome) *OutcomeInput {
	return &OutcomeInput{
		PlayerID:  o.PlayerID,
		Nick:      o.Nick,
		Status:    string(o.Status),
		Tier:      nullable(string(o.Tier)),
		Title:     nullable(o.Title),
		SourceURL: nullable(o.SourceURL),
		Photo:     nullable(o.Photo),
		Message:   nullable(o.Message),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
