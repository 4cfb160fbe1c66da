package models

import "time"

// RequestStatus is the lifecycle state of a mentoring request.
//
// PENDING -> ACCEPTED -> COMPLETED
// PENDING -> DECLINED
//
// COMPLETED and DECLINED are terminal.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestAccepted  RequestStatus = "ACCEPTED"
	RequestDeclined  RequestStatus = "DECLINED"
	RequestCompleted RequestStatus = "COMPLETED"
)

// Terminal reports whether no further transitions are allowed.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestDeclined
}

// Request is a student's mentoring request addressed to a single mentor. The
// student and mentor references are immutable after creation; requests are
// never deleted.
type Request struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"studentId"`
	MentorID    string        `db:"mentor_id" json:"mentorId"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description,omitempty"`
	Status      RequestStatus `db:"status" json:"status"`
	ScheduledAt *time.Time    `db:"scheduled_at" json:"scheduledAt,omitempty"`
	ReviewID    *string       `db:"review_id" json:"reviewId,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// PartySummary is a stripped account projection attached to enriched request
// listings. Credentials never appear here.
type PartySummary struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Email string  `db:"email" json:"email"`
	Phone *string `db:"phone" json:"phone,omitempty"`
}

// StudentRequestView is a request as seen by its student: enriched with the
// mentor summary and the review once completed.
type StudentRequestView struct {
	Request
	Mentor PartySummary `json:"mentor"`
	Review *Review      `json:"review,omitempty"`
}

// MentorRequestView is a request as seen by its mentor: enriched with the
// student contact.
type MentorRequestView struct {
	Request
	Student PartySummary `json:"student"`
}

// AdminRequestView is a request as seen by moderation: both parties attached.
type AdminRequestView struct {
	Request
	Student PartySummary `json:"student"`
	Mentor  PartySummary `json:"mentor"`
	Review  *Review      `json:"review,omitempty"`
}
