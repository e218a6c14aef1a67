package models

import (
	"database/sql"
	"time"
)

// Task size constants
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeBig    = "big"
)

// Urgency constants
const (
	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

type Task struct {
	ID           int64          `db:"id"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	DueDate      sql.NullTime   `db:"due_date"`
	Size         string         `db:"size"`
	Urgency      string         `db:"urgency"`
	Completed    bool           `db:"completed"`
	CompletedAt  sql.NullTime   `db:"completed_at"`
	IsWeekly     bool           `db:"is_weekly"`
	TimesPerWeek sql.NullInt64  `db:"times_per_week"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Target returns the weekly completion target, or 0 when the task is not
// configured as weekly.
func (t *Task) Target() int {
	if !t.IsWeekly || !t.TimesPerWeek.Valid {
		return 0
	}
	return int(t.TimesPerWeek.Int64)
}
