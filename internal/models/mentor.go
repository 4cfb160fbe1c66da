package models

import (
	"time"

	"github.com/lib/pq"
)

// VerificationStatus is the admin moderation state of a mentor.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// MentorProfile holds the mentor-writable fields. Self-service profile updates
// may touch these and nothing else.
type MentorProfile struct {
	Name                 string         `db:"name" json:"name"`
	Phone                *string        `db:"phone" json:"phone,omitempty"`
	Bio                  string         `db:"bio" json:"bio,omitempty"`
	Expertise            pq.StringArray `db:"expertise" json:"expertise"`
	Service              string         `db:"service" json:"service,omitempty"`
	IDCardURL            string         `db:"id_card_url" json:"idCardUrl,omitempty"`
	AvailableHours       string         `db:"available_hours" json:"availableHours"`
	IsCurrentlyAvailable bool           `db:"is_currently_available" json:"isCurrentlyAvailable"`
}

// MentorReputation holds the derived rating aggregates. Written only by the
// review aggregator; user input never reaches these fields.
type MentorReputation struct {
	Ratings          float64 `db:"rating_avg" json:"ratings"`
	RatingsCount     int     `db:"rating_count" json:"ratingsCount"`
	StudentsMentored int     `db:"students_mentored" json:"numberOfStudentsMentored"`
}

// Mentor is a volunteer mentor account. The profile and reputation sections
// are persisted in the same row but have disjoint write authorities.
type Mentor struct {
	ID           string `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	MentorProfile
	VerificationStatus VerificationStatus `db:"verification_status" json:"verificationStatus"`
	MentorReputation
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// MentorStatusFilter narrows admin mentor listings.
type MentorStatusFilter struct {
	Status VerificationStatus
}
