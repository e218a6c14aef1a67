package models

import "time"

type Comment struct {
	ID        int64     `db:"id"`
	TaskID    int64     `db:"task_id"`
	Text      string    `db:"text"`
	Timestamp time.Time `db:"timestamp"`
}
