package models

import "time"

type User struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Password  string    `db:"password"` // bcrypt hash
	CreatedAt time.Time `db:"created_at"`
}
