package models

import "time"

// Component score ceilings. CA1 and CA2 are continuous assessments,
// exam carries the remaining weight, so totals land on a 0-100 scale.
const (
	CA1Max  = 10.0
	CA2Max  = 10.0
	ExamMax = 80.0
)

// SubjectResult is one student's record for one subject in one term.
// Total, Grade, GradePoint, Position and ClassAverage are derived and
// recomputed whenever any row in the cohort changes.
type SubjectResult struct {
	ID           string     `db:"id" json:"id"`
	SchoolID     string     `db:"school_id" json:"school_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	SubjectID    string     `db:"subject_id" json:"subject_id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	TermID       string     `db:"term_id" json:"term_id"`
	CA1          float64    `db:"ca1" json:"ca1"`
	CA2          float64    `db:"ca2" json:"ca2"`
	Exam         float64    `db:"exam" json:"exam"`
	Total        float64    `db:"total" json:"total"`
	Grade        string     `db:"grade" json:"grade"`
	GradePoint   float64    `db:"grade_point" json:"grade_point"`
	Position     int        `db:"position" json:"position"`
	ClassAverage float64    `db:"class_average" json:"class_average"`
	TeacherID    string     `db:"teacher_id" json:"teacher_id"`
	Comment      *string    `db:"comment" json:"comment,omitempty"`
	IsSubmitted  bool       `db:"is_submitted" json:"is_submitted"`
	SubmittedAt  *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	SubmittedBy  *string    `db:"submitted_by" json:"submitted_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ResultKey identifies the unique (student, subject, term) slot.
type ResultKey struct {
	StudentID string
	SubjectID string
	TermID    string
}

// RecordResultRequest is the teacher payload for one score entry.
type RecordResultRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	ClassID   string  `json:"class_id" validate:"required"`
	TermID    string  `json:"term_id" validate:"required"`
	CA1       float64 `json:"ca1" validate:"gte=0,lte=10"`
	CA2       float64 `json:"ca2" validate:"gte=0,lte=10"`
	Exam      float64 `json:"exam" validate:"gte=0,lte=80"`
	Comment   *string `json:"comment,omitempty"`
}

// BatchRecordRequest records scores for many students of one cohort at once.
type BatchRecordRequest struct {
	SubjectID string            `json:"subject_id" validate:"required"`
	ClassID   string            `json:"class_id" validate:"required"`
	TermID    string            `json:"term_id" validate:"required"`
	Entries   []BatchScoreEntry `json:"entries" validate:"required,min=1,dive"`
}

// BatchScoreEntry is one row of a batch submission. Score bounds are
// checked per row so one bad entry never rejects the whole batch.
type BatchScoreEntry struct {
	StudentID string  `json:"student_id" validate:"required"`
	CA1       float64 `json:"ca1"`
	CA2       float64 `json:"ca2"`
	Exam      float64 `json:"exam"`
	Comment   *string `json:"comment,omitempty"`
}

// SubmitResultsRequest finalises a set of result rows for summary inclusion.
type SubmitResultsRequest struct {
	SubjectID string   `json:"subject_id" validate:"required"`
	ClassID   string   `json:"class_id" validate:"required"`
	TermID    string   `json:"term_id" validate:"required"`
	ResultIDs []string `json:"result_ids,omitempty" validate:"omitempty,dive,required"`
}

// ResultFilter scopes result listing queries.
type ResultFilter struct {
	SchoolID  string
	StudentID string
	SubjectID string
	ClassID   string
	TermID    string
	Submitted *bool
	Page      int
	PageSize  int
}

// BatchRecordResponse reports per-row outcomes of a batch entry.
type BatchRecordResponse struct {
	Recorded int                `json:"recorded"`
	Failed   int                `json:"failed"`
	Errors   []BatchRecordError `json:"errors,omitempty"`
	Results  []SubjectResult    `json:"results"`
}

// BatchRecordError pins a failure to the offending student row.
type BatchRecordError struct {
	StudentID string `json:"student_id"`
	Message   string `json:"message"`
}
