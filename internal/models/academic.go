package models

import "time"

// AcademicSession models one school year, e.g. "2025/2026".
type AcademicSession struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Term models one of the three terms within a session. Locked terms
// reject any result mutation.
type Term struct {
	ID             string     `db:"id" json:"id"`
	SessionID      string     `db:"session_id" json:"session_id"`
	Name           string     `db:"name" json:"name"`
	Sequence       int        `db:"sequence" json:"sequence"`
	StartDate      time.Time  `db:"start_date" json:"start_date"`
	EndDate        time.Time  `db:"end_date" json:"end_date"`
	IsCurrent      bool       `db:"is_current" json:"is_current"`
	IsLocked       bool       `db:"is_locked" json:"is_locked"`
	LockedAt       *time.Time `db:"locked_at" json:"locked_at,omitempty"`
	LockedBy       *string    `db:"locked_by" json:"locked_by,omitempty"`
	NextTermBegins *time.Time `db:"next_term_begins" json:"next_term_begins,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// TermFilter defines filters supported by term list endpoints.
type TermFilter struct {
	SchoolID  string
	SessionID string
	IsCurrent *bool
	IsLocked  *bool
}

// Class represents a class arm, e.g. "JSS 2A".
type Class struct {
	ID            string    `db:"id" json:"id"`
	SchoolID      string    `db:"school_id" json:"school_id"`
	Name          string    `db:"name" json:"name"`
	Level         string    `db:"level" json:"level"`
	Arm           string    `db:"arm" json:"arm"`
	ClassTeacherID *string  `db:"class_teacher_id" json:"class_teacher_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Subject represents a taught subject.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
