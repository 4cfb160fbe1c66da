package models

import "time"

// Review is the student's rating of a completed request. A request acquires at
// most one review, created atomically with the completion transition.
type Review struct {
	ID        string    `db:"id" json:"id"`
	RequestID string    `db:"request_id" json:"requestId"`
	StudentID string    `db:"student_id" json:"studentId"`
	MentorID  string    `db:"mentor_id" json:"mentorId"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ReputationSnapshot is the recomputed aggregate for one mentor: the mean and
// count over reviews of completed requests, plus the distinct mentee count.
type ReputationSnapshot struct {
	RatingAvg        float64
	RatingCount      int
	StudentsMentored int
}
