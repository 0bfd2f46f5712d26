// Package grading implements grade resolution and cohort ranking for
// term results. A Scale is an ordered set of score bands; resolution
// uses floor semantics so fractional totals falling in the gap between
// integer band boundaries still resolve to the band below.
package grading

import (
	"fmt"
	"sort"

	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

// Band is one row of a grade scale.
type Band struct {
	Grade  string  `json:"grade"`
	Min    float64 `json:"min_score"`
	Max    float64 `json:"max_score"`
	Point  float64 `json:"grade_point"`
	Remark string  `json:"remark"`
}

// Scale is a validated, ascending-ordered set of bands covering 0-100.
type Scale struct {
	bands []Band
}

// NewScale validates the bands and returns a usable scale. Bands may be
// supplied in any order; they must cover 0 and 100, must not overlap,
// and no gap between consecutive bands may exceed one mark.
func NewScale(bands []Band) (*Scale, error) {
	if len(bands) < 2 {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("grade scale needs at least 2 bands, got %d", len(bands)))
	}

	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for i, b := range sorted {
		if b.Grade == "" {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, "grade scale band missing grade label")
		}
		if b.Min < 0 || b.Max > 100 || b.Min > b.Max {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("band %s has invalid range [%v, %v]", b.Grade, b.Min, b.Max))
		}
		if b.Point < 0 {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("band %s has negative grade point", b.Grade))
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if b.Min <= prev.Max {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("bands %s and %s overlap", prev.Grade, b.Grade))
		}
		if b.Min-prev.Max > 1 {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("gap between bands %s and %s exceeds one mark", prev.Grade, b.Grade))
		}
	}
	if sorted[0].Min != 0 {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "grade scale must start at 0")
	}
	if sorted[len(sorted)-1].Max != 100 {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "grade scale must end at 100")
	}

	return &Scale{bands: sorted}, nil
}

// Resolve maps a total score to its band. Scores between two integer
// boundaries (e.g. 39.5 between a 0-39 band and a 40-44 band) resolve
// to the lower band.
func (s *Scale) Resolve(total float64) (Band, error) {
	if total < 0 || total > 100 {
		return Band{}, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("no grade band covers score %v", total))
	}
	// Greatest band whose Min does not exceed the score.
	idx := sort.Search(len(s.bands), func(i int) bool { return s.bands[i].Min > total })
	return s.bands[idx-1], nil
}

// Bands returns a copy of the ordered bands.
func (s *Scale) Bands() []Band {
	out := make([]Band, len(s.bands))
	copy(out, s.bands)
	return out
}

// DefaultScale is the WAEC nine-band scale used when a school has not
// configured its own grading system.
func DefaultScale() *Scale {
	scale, err := NewScale([]Band{
		{Grade: "A1", Min: 75, Max: 100, Point: 4.0, Remark: "Excellent"},
		{Grade: "B2", Min: 70, Max: 74, Point: 3.6, Remark: "Very Good"},
		{Grade: "B3", Min: 65, Max: 69, Point: 3.2, Remark: "Good"},
		{Grade: "C4", Min: 60, Max: 64, Point: 2.8, Remark: "Credit"},
		{Grade: "C5", Min: 55, Max: 59, Point: 2.4, Remark: "Credit"},
		{Grade: "C6", Min: 50, Max: 54, Point: 2.0, Remark: "Credit"},
		{Grade: "D7", Min: 45, Max: 49, Point: 1.6, Remark: "Pass"},
		{Grade: "E8", Min: 40, Max: 44, Point: 1.2, Remark: "Pass"},
		{Grade: "F9", Min: 0, Max: 39, Point: 0.0, Remark: "Fail"},
	})
	if err != nil {
		panic(fmt.Sprintf("default grade scale invalid: %v", err))
	}
	return scale
}
