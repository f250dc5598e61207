package models

import (
	"time"

	"github.com/bicired/bicired-api/internal/schedule"
)

// ScheduleTemplateID is the fixed key of the one weekly template row. The
// singleton constraint lives in the persistence key, not in process state.
const ScheduleTemplateID = "singleton"

// ScheduleTemplate is the persisted weekly availability grid.
type ScheduleTemplate struct {
	ID        string        `db:"id" json:"id"`
	Slots     schedule.Grid `db:"slots" json:"slots"`
	UpdatedBy *string       `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// AgendaKind distinguishes the two staff calendars.
type AgendaKind string

const (
	AgendaPickups AgendaKind = "pickups"
	AgendaReturns AgendaKind = "returns"
)

// AgendaEntry is one scheduled pickup or return in a staff calendar.
type AgendaEntry struct {
	UserID       string    `db:"user_id" json:"user_id"`
	UserName     string    `db:"user_name" json:"user_name"`
	UserLastName string    `db:"user_last_name" json:"user_last_name"`
	ModelName    string    `db:"model_name" json:"model_name"`
	ScheduledAt  time.Time `db:"scheduled_at" json:"scheduled_at"`
}

// ExportJobStatus tracks an asynchronous agenda export.
type ExportJobStatus string

const (
	ExportPending   ExportJobStatus = "PENDING"
	ExportCompleted ExportJobStatus = "COMPLETED"
	ExportFailed    ExportJobStatus = "FAILED"
)

// ExportJob is a queued agenda export request and its outcome.
type ExportJob struct {
	ID          string          `db:"id" json:"id"`
	Kind        AgendaKind      `db:"kind" json:"kind"`
	Format      string          `db:"format" json:"format"`
	Year        int             `db:"year" json:"year"`
	Month       int             `db:"month" json:"month"`
	Status      ExportJobStatus `db:"status" json:"status"`
	FilePath    *string         `db:"file_path" json:"-"`
	Error       *string         `db:"error" json:"error,omitempty"`
	RequestedBy string          `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
