package models

import "time"

// Student represents an enrolled student. UserID links to the student's
// login account; ParentUserID to the guardian's account where one exists.
type Student struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	UserID       *string   `db:"user_id" json:"user_id,omitempty"`
	ParentUserID *string   `db:"parent_user_id" json:"parent_user_id,omitempty"`
	ClassID      string    `db:"class_id" json:"class_id"`
	AdmissionNo  string    `db:"admission_no" json:"admission_no"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Gender       string    `db:"gender" json:"gender"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the student's names for display.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	SchoolID string
	ClassID  string
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
