package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

func TestDefaultScaleResolvesBoundaries(t *testing.T) {
	scale := DefaultScale()

	cases := []struct {
		total float64
		grade string
		point float64
	}{
		{100, "A1", 4.0},
		{75, "A1", 4.0},
		{74, "B2", 3.6},
		{70, "B2", 3.6},
		{69, "B3", 3.2},
		{65, "B3", 3.2},
		{64, "C4", 2.8},
		{60, "C4", 2.8},
		{59, "C5", 2.4},
		{55, "C5", 2.4},
		{54, "C6", 2.0},
		{50, "C6", 2.0},
		{49, "D7", 1.6},
		{45, "D7", 1.6},
		{44, "E8", 1.2},
		{40, "E8", 1.2},
		{39, "F9", 0.0},
		{0, "F9", 0.0},
	}

	for _, tc := range cases {
		band, err := scale.Resolve(tc.total)
		require.NoError(t, err, "total %v", tc.total)
		assert.Equal(t, tc.grade, band.Grade, "total %v", tc.total)
		assert.Equal(t, tc.point, band.Point, "total %v", tc.total)
	}
}

func TestResolveFractionalTotalsUseLowerBand(t *testing.T) {
	scale := DefaultScale()

	band, err := scale.Resolve(39.5)
	require.NoError(t, err)
	assert.Equal(t, "F9", band.Grade)

	band, err = scale.Resolve(74.99)
	require.NoError(t, err)
	assert.Equal(t, "B2", band.Grade)
}

func TestResolveRejectsOutOfRange(t *testing.T) {
	scale := DefaultScale()

	_, err := scale.Resolve(-0.5)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfiguration))

	_, err = scale.Resolve(100.01)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfiguration))
}

func TestNewScaleValidation(t *testing.T) {
	valid := []Band{
		{Grade: "PASS", Min: 40, Max: 100, Point: 1},
		{Grade: "FAIL", Min: 0, Max: 39, Point: 0},
	}

	t.Run("accepts unordered bands", func(t *testing.T) {
		scale, err := NewScale(valid)
		require.NoError(t, err)
		bands := scale.Bands()
		assert.Equal(t, "FAIL", bands[0].Grade)
		assert.Equal(t, "PASS", bands[1].Grade)
	})

	t.Run("rejects single band", func(t *testing.T) {
		_, err := NewScale(valid[:1])
		assert.Error(t, err)
	})

	t.Run("rejects overlap", func(t *testing.T) {
		_, err := NewScale([]Band{
			{Grade: "A", Min: 0, Max: 50},
			{Grade: "B", Min: 50, Max: 100},
		})
		assert.Error(t, err)
	})

	t.Run("rejects wide gap", func(t *testing.T) {
		_, err := NewScale([]Band{
			{Grade: "A", Min: 0, Max: 40},
			{Grade: "B", Min: 45, Max: 100},
		})
		assert.Error(t, err)
	})

	t.Run("rejects missing zero floor", func(t *testing.T) {
		_, err := NewScale([]Band{
			{Grade: "A", Min: 1, Max: 50},
			{Grade: "B", Min: 51, Max: 100},
		})
		assert.Error(t, err)
	})

	t.Run("rejects ceiling below 100", func(t *testing.T) {
		_, err := NewScale([]Band{
			{Grade: "A", Min: 0, Max: 50},
			{Grade: "B", Min: 51, Max: 99},
		})
		assert.Error(t, err)
	})
}
