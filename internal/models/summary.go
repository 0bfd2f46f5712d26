package models

import "time"

// PromotionStatus captures the end-of-session decision for a student.
type PromotionStatus string

const (
	PromotionPromoted PromotionStatus = "PROMOTED"
	PromotionRepeated PromotionStatus = "REPEATED"
	PromotionPending  PromotionStatus = "PENDING"
)

// TermSummary aggregates a student's submitted subject results for a term.
type TermSummary struct {
	ID                string          `db:"id" json:"id"`
	SchoolID          string          `db:"school_id" json:"school_id"`
	StudentID         string          `db:"student_id" json:"student_id"`
	ClassID           string          `db:"class_id" json:"class_id"`
	TermID            string          `db:"term_id" json:"term_id"`
	TotalScore        float64         `db:"total_score" json:"total_score"`
	AverageScore      float64         `db:"average_score" json:"average_score"`
	GPA               float64         `db:"gpa" json:"gpa"`
	Position          int             `db:"position" json:"position"`
	TotalStudents     int             `db:"total_students" json:"total_students"`
	SubjectCount      int             `db:"subject_count" json:"subject_count"`
	DaysPresent       int             `db:"days_present" json:"days_present"`
	DaysAbsent        int             `db:"days_absent" json:"days_absent"`
	PsychomotorRating string          `db:"psychomotor_rating" json:"psychomotor_rating"`
	AffectiveRating   string          `db:"affective_rating" json:"affective_rating"`
	TeacherComment    *string         `db:"teacher_comment" json:"teacher_comment,omitempty"`
	HeadComment       *string         `db:"head_comment" json:"head_comment,omitempty"`
	PromotionStatus   PromotionStatus `db:"promotion_status" json:"promotion_status"`
	ComputedAt        time.Time       `db:"computed_at" json:"computed_at"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// SummaryRemarksUpdate carries the editable, non-derived summary fields.
type SummaryRemarksUpdate struct {
	DaysPresent       *int             `json:"days_present,omitempty" validate:"omitempty,gte=0"`
	DaysAbsent        *int             `json:"days_absent,omitempty" validate:"omitempty,gte=0"`
	PsychomotorRating *string          `json:"psychomotor_rating,omitempty"`
	AffectiveRating   *string          `json:"affective_rating,omitempty"`
	TeacherComment    *string          `json:"teacher_comment,omitempty"`
	HeadComment       *string          `json:"head_comment,omitempty"`
	PromotionStatus   *PromotionStatus `json:"promotion_status,omitempty" validate:"omitempty,oneof=PROMOTED REPEATED PENDING"`
}

// StudentTermResult is the full view returned to students and parents:
// the summary plus every submitted subject row behind it.
type StudentTermResult struct {
	Summary  TermSummary     `json:"summary"`
	Subjects []SubjectResult `json:"subjects"`
}
