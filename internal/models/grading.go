package models

import "time"

// GradingSystem groups a school's grade scale rows. A school may keep
// several systems but only one may be the default used for resolution.
type GradingSystem struct {
	ID        string       `db:"id" json:"id"`
	SchoolID  string       `db:"school_id" json:"school_id"`
	Name      string       `db:"name" json:"name"`
	IsDefault bool         `db:"is_default" json:"is_default"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
	Scales    []GradeScale `json:"scales,omitempty"`
}

// GradeScale is one band of a grading system, e.g. A1 covering 75-100.
type GradeScale struct {
	ID              string    `db:"id" json:"id"`
	GradingSystemID string    `db:"grading_system_id" json:"grading_system_id"`
	Grade           string    `db:"grade" json:"grade"`
	MinScore        float64   `db:"min_score" json:"min_score"`
	MaxScore        float64   `db:"max_score" json:"max_score"`
	GradePoint      float64   `db:"grade_point" json:"grade_point"`
	Remark          string    `db:"remark" json:"remark"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// CreateGradingSystemRequest is the admin payload for a new grading system.
type CreateGradingSystemRequest struct {
	Name      string                  `json:"name" validate:"required"`
	IsDefault bool                    `json:"is_default"`
	Scales    []GradeScaleBandRequest `json:"scales" validate:"required,min=2,dive"`
}

// GradeScaleBandRequest is one band within a grading system payload.
type GradeScaleBandRequest struct {
	Grade      string  `json:"grade" validate:"required"`
	MinScore   float64 `json:"min_score" validate:"gte=0,lte=100"`
	MaxScore   float64 `json:"max_score" validate:"gte=0,lte=100"`
	GradePoint float64 `json:"grade_point" validate:"gte=0"`
	Remark     string  `json:"remark"`
}
