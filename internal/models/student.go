package models

import "time"

// Student is a registered mentee account. Identity fields are immutable after
// registration; students are never deleted in-band.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Branch       string    `db:"branch" json:"branch,omitempty"`
	Course       string    `db:"course" json:"course,omitempty"`
	Year         string    `db:"year" json:"year,omitempty"`
	ProfileImg   string    `db:"profile_img" json:"profileImg,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
