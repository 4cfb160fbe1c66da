package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
)

func TestReviewRepositoryCompleteAndReview(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM requests WHERE id = \\$1 AND student_id = \\$2 FOR UPDATE").
		WithArgs("r-1", "s-1").
		WillReturnRows(requestRows().
			AddRow("r-1", "s-1", "m-1", "Help", "", "ACCEPTED", nil, nil, time.Now(), time.Now()))
	mock.ExpectQuery("SELECT id FROM mentors WHERE id = \\$1 FOR UPDATE").
		WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m-1"))
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE requests SET status").
		WithArgs("r-1", models.RequestCompleted, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE\\(AVG\\(r.rating\\), 0\\), COUNT\\(r.id\\)").
		WithArgs("m-1", models.RequestCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.5, 2))
	mock.ExpectQuery("SELECT COUNT\\(DISTINCT student_id\\) FROM requests").
		WithArgs("m-1", models.RequestCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("UPDATE mentors SET rating_avg").
		WithArgs("m-1", 4.5, 2, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	request, review, err := repo.CompleteAndReview(context.Background(), "r-1", "s-1", 5, "great session")
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, request.Status)
	require.NotNil(t, request.ReviewID)
	assert.Equal(t, review.ID, *request.ReviewID)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "m-1", review.MentorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryCompleteRejectsNonAccepted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM requests WHERE id = \\$1 AND student_id = \\$2 FOR UPDATE").
		WithArgs("r-1", "s-1").
		WillReturnRows(requestRows().
			AddRow("r-1", "s-1", "m-1", "Help", "", "PENDING", nil, nil, time.Now(), time.Now()))
	mock.ExpectRollback()

	_, _, err := repo.CompleteAndReview(context.Background(), "r-1", "s-1", 4, "")
	assert.ErrorIs(t, err, ErrNotAccepted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryCompleteOtherStudentsRequest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM requests WHERE id = \\$1 AND student_id = \\$2 FOR UPDATE").
		WithArgs("r-1", "s-other").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.CompleteAndReview(context.Background(), "r-1", "s-other", 4, "")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
