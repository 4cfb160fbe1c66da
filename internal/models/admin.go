package models

import "time"

// Admin is a moderation account. Seeded out-of-band, never self-registered.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// UserSummary is a role-tagged account projection for the merged admin user
// listing.
type UserSummary struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PlatformStats are live aggregate counts for the admin dashboard.
type PlatformStats struct {
	TotalUsers      int `json:"totalUsers"`
	TotalStudents   int `json:"totalStudents"`
	TotalMentors    int `json:"totalMentors"`
	ApprovedMentors int `json:"approvedMentors"`
	PendingMentors  int `json:"pendingMentors"`
	TotalRequests   int `json:"totalRequests"`
}
