package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/result-portal-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func resultRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "school_id", "student_id", "subject_id", "class_id", "term_id",
		"ca1", "ca2", "exam", "total", "grade", "grade_point", "position", "class_average",
		"teacher_id", "comment", "is_submitted", "submitted_at", "submitted_by", "created_at", "updated_at",
	})
}

func TestFetchCohort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	now := time.Now()
	rows := resultRows().
		AddRow("r1", "sch1", "st1", "sub1", "cls1", "trm1", 9.0, 8.0, 68.0, 85.0, "A1", 4.0, 1, 62.0, "t1", nil, true, now, "t1", now, now).
		AddRow("r2", "sch1", "st2", "sub1", "cls1", "trm1", 7.0, 6.0, 57.0, 70.0, "B2", 3.6, 2, 62.0, "t1", nil, true, now, "t1", now, now)
	mock.ExpectQuery("SELECT (.+) FROM subject_results\\s+WHERE subject_id = \\$1 AND class_id = \\$2 AND term_id = \\$3").
		WithArgs("sub1", "cls1", "trm1").
		WillReturnRows(rows)

	results, err := repo.FetchCohort(context.Background(), "sub1", "cls1", "trm1")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "A1", results[0].Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPreservesSubmittedFlag(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	now := time.Now()
	returned := sqlmock.NewRows([]string{"id", "is_submitted", "created_at"}).AddRow("r1", true, now)
	mock.ExpectQuery("INSERT INTO subject_results").WillReturnRows(returned)

	result := &models.SubjectResult{
		SchoolID: "sch1", StudentID: "st1", SubjectID: "sub1", ClassID: "cls1", TermID: "trm1",
		CA1: 9, CA2: 8, Exam: 68, Total: 85, Grade: "A1", GradePoint: 4.0, TeacherID: "t1",
	}
	err := repo.Upsert(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "r1", result.ID)
	assert.True(t, result.IsSubmitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDerivedRunsInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subject_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE subject_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveDerived(context.Background(), []models.SubjectResult{
		{ID: "r1", Position: 1, ClassAverage: 77.5},
		{ID: "r2", Position: 2, ClassAverage: 77.5},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSubmittedWholeCohort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("UPDATE subject_results SET is_submitted = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.MarkSubmitted(context.Background(), "sub1", "cls1", "trm1", "t1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFiltersBySubmitted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM subject_results").WillReturnRows(countRows)

	now := time.Now()
	rows := resultRows().
		AddRow("r1", "sch1", "st1", "sub1", "cls1", "trm1", 9.0, 8.0, 68.0, 85.0, "A1", 4.0, 1, 85.0, "t1", nil, true, now, "t1", now, now)
	mock.ExpectQuery("SELECT (.+) FROM subject_results").WillReturnRows(rows)

	submitted := true
	results, total, err := repo.List(context.Background(), models.ResultFilter{TermID: "trm1", Submitted: &submitted})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
