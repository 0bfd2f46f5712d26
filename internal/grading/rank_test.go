package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionsCompetitionRanking(t *testing.T) {
	t.Run("distinct scores", func(t *testing.T) {
		assert.Equal(t, []int{2, 1, 3}, Positions([]float64{80, 90, 70}))
	})

	t.Run("ties share rank and next rank skips", func(t *testing.T) {
		// 85, 85 tie at 1, 80 takes 3.
		assert.Equal(t, []int{1, 1, 3}, Positions([]float64{85, 85, 80}))
	})

	t.Run("all tied", func(t *testing.T) {
		assert.Equal(t, []int{1, 1, 1}, Positions([]float64{60, 60, 60}))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Positions(nil))
	})

	t.Run("single", func(t *testing.T) {
		assert.Equal(t, []int{1}, Positions([]float64{42}))
	})
}

func TestMean(t *testing.T) {
	assert.Equal(t, 62.0, Mean([]float64{85, 70, 60, 55, 40}))
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 33.33, Mean([]float64{33.33}))
}

func TestRound2HalfToEven(t *testing.T) {
	assert.Equal(t, 2.22, Round2(2.225))
	assert.Equal(t, 2.24, Round2(2.235))
	assert.Equal(t, 66.67, Round2(200.0/3.0))
}
