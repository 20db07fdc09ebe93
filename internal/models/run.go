package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a locale export.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run records one locale export attempt.
type Run struct {
	id            string
	sequence      int
	Locale        string
	Status        RunStatus
	GamesTotal    int
	TracksTotal   int
	TablesWritten int
	TablesSkipped int
	WorkbookPath  string
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewRun returns a running [Run] for locale starting now.
func NewRun(locale string) *Run {
	now := time.Now()
	return &Run{
		Locale:    locale,
		Status:    RunRunning,
		StartedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string           { return r.id }
func (r *Run) Sequence() int        { return r.sequence }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }

func (r *Run) SetID(id string)          { r.id = id }
func (r *Run) SetSequence(seq int)      { r.sequence = seq }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// Finish marks the run as succeeded, or failed with err's message when err is non-nil.
func (r *Run) Finish(err error) {
	now := time.Now()
	r.FinishedAt = &now
	if err != nil {
		r.Status = RunFailed
		r.ErrorMessage = err.Error()
		return
	}
	r.Status = RunSucceeded
}

// Elapsed returns how long the run took, or has taken so far.
func (r *Run) Elapsed() time.Duration {
	if r.FinishedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks required fields.
func (r *Run) Validate() error {
	if r.Locale == "" {
		return fmt.Errorf("locale is required")
	}
	switch r.Status {
	case RunRunning, RunSucceeded, RunFailed:
	default:
		return fmt.Errorf("invalid status: %q", r.Status)
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("started_at is required")
	}
	return nil
}
