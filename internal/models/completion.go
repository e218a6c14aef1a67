package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskCompletion is one append-only ledger entry: task X was completed by
// user Y at time T. Entries are never updated and are removed only when the
// owning task is deleted.
type TaskCompletion struct {
	ID     uuid.UUID `db:"id"`
	TaskID int64     `db:"task_id"`
	UserID int64     `db:"user_id"`
	Date   time.Time `db:"date"`
}
