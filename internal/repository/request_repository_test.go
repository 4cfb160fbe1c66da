package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
)

func requestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "mentor_id", "title", "description", "status",
		"scheduled_at", "review_id", "created_at", "updated_at",
	})
}

func TestRequestRepositoryCreateDefaultsPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("INSERT INTO requests").
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.Request{StudentID: "s-1", MentorID: "m-1", Title: "Help with Go"}
	err := repo.Create(context.Background(), request)
	require.NoError(t, err)
	assert.NotEmpty(t, request.ID)
	assert.Equal(t, models.RequestPending, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryTransitionStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	rows := requestRows().
		AddRow("r-1", "s-1", "m-1", "Help", "", "ACCEPTED", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2 RETURNING *")).
		WithArgs("r-1", models.RequestPending, models.RequestAccepted, sqlmock.AnyArg()).
		WillReturnRows(rows)

	request, err := repo.TransitionStatus(context.Background(), "r-1", models.RequestPending, models.RequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryTransitionStatusPreconditionLost(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("UPDATE requests SET status").
		WithArgs("r-1", models.RequestPending, models.RequestDeclined, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.TransitionStatus(context.Background(), "r-1", models.RequestPending, models.RequestDeclined)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListByStudentAttachesReviews(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	reviewID := "rev-1"
	listRows := sqlmock.NewRows([]string{
		"id", "student_id", "mentor_id", "title", "description", "status",
		"scheduled_at", "review_id", "created_at", "updated_at",
		"mentor.id", "mentor.name", "mentor.email", "mentor.phone",
	}).
		AddRow("r-1", "s-1", "m-1", "Help", "", "COMPLETED", nil, reviewID, time.Now(), time.Now(),
			"m-1", "Mentor One", "one@example.com", nil).
		AddRow("r-2", "s-1", "m-2", "More help", "", "PENDING", nil, nil, time.Now(), time.Now(),
			"m-2", "Mentor Two", "two@example.com", nil)
	mock.ExpectQuery("SELECT q.id, .* FROM requests q\\s+JOIN mentors m").
		WithArgs("s-1").
		WillReturnRows(listRows)

	reviewRows := sqlmock.NewRows([]string{"id", "request_id", "student_id", "mentor_id", "rating", "comment", "created_at"}).
		AddRow(reviewID, "r-1", "s-1", "m-1", 5, "great", time.Now())
	mock.ExpectQuery("SELECT \\* FROM reviews WHERE request_id IN").
		WithArgs("r-1").
		WillReturnRows(reviewRows)

	views, err := repo.ListByStudent(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Review)
	assert.Equal(t, 5, views[0].Review.Rating)
	assert.Equal(t, "Mentor One", views[0].Mentor.Name)
	assert.Nil(t, views[1].Review)
	assert.NoError(t, mock.ExpectationsWereMet())
}
