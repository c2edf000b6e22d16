package db

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusCanceled  = "canceled"
	RunStatusFailed    = "failed"
)

// Run represents a photo run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	APIURL      string     `json:"api_url"`
	CatalogPath string     `json:"catalog_path"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	OK          int        `json:"ok"`
	Fail        int        `json:"fail"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunInput contains the fields for creating a run
type RunInput struct {
	APIURL      string
	CatalogPath string
	Total       int
}

// Outcome represents the stored result for one player
type Outcome struct {
	ID        int64     `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	PlayerID  string    `json:"player_id"`
	Nick      string    `json:"nick"`
	Status    string    `json:"status"`
	Tier      *string   `json:"tier,omitempty"`
	Title     *string   `json:"title,omitempty"`
	SourceURL *string   `json:"source_url,omitempty"`
	Photo     *string   `json:"photo,omitempty"`
	Message   *string   `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OutcomeInput contains the fields for recording an outcome. Nil pointers are stored as NULL.
type OutcomeInput struct {
	PlayerID  string
	Nick      string
	Status    string
	Tier      *string
	Title     *string
	SourceURL *string
	Photo     *string
	Message   *string
}
