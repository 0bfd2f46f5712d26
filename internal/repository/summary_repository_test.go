package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/result-portal-api/internal/models"
)

func TestUpsertBatchCommitsAllRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO term_summaries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO term_summaries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.UpsertBatch(context.Background(), []models.TermSummary{
		{SchoolID: "sch1", StudentID: "st1", ClassID: "cls1", TermID: "trm1", TotalScore: 310, AverageScore: 62, GPA: 2.64, Position: 1, SubjectCount: 5},
		{SchoolID: "sch1", StudentID: "st2", ClassID: "cls1", TermID: "trm1", TotalScore: 280, AverageScore: 56, GPA: 2.4, Position: 2, SubjectCount: 5},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO term_summaries").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.UpsertBatch(context.Background(), []models.TermSummary{
		{SchoolID: "sch1", StudentID: "st1", ClassID: "cls1", TermID: "trm1"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByStudentTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "school_id", "student_id", "class_id", "term_id",
		"total_score", "average_score", "gpa", "position", "total_students", "subject_count",
		"days_present", "days_absent", "psychomotor_rating", "affective_rating",
		"teacher_comment", "head_comment", "promotion_status", "computed_at", "created_at", "updated_at",
	}).AddRow("sum1", "sch1", "st1", "cls1", "trm1", 310.0, 62.0, 2.64, 1, 28, 5, 0, 0, "", "", nil, nil, "PENDING", now, now, now)
	mock.ExpectQuery("SELECT (.+) FROM term_summaries WHERE student_id = \\$1 AND term_id = \\$2").
		WithArgs("st1", "trm1").
		WillReturnRows(rows)

	summary, err := repo.FindByStudentTerm(context.Background(), "st1", "trm1")
	require.NoError(t, err)
	assert.Equal(t, 62.0, summary.AverageScore)
	assert.Equal(t, 1, summary.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRemarksRequiresExistingSummary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	mock.ExpectExec("UPDATE term_summaries SET").WillReturnResult(sqlmock.NewResult(0, 0))

	comment := "An excellent term."
	err := repo.UpdateRemarks(context.Background(), "st1", "trm1", models.SummaryRemarksUpdate{TeacherComment: &comment})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
