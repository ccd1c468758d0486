package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectLinearExtrapolation(t *testing.T) {
	rate := -2.0
	projected := Project(95, &rate, []int{20, 30, 45})

	assert.Equal(t, map[int]float64{20: 55, 30: 35, 45: 5}, projected)
}

func TestProjectClampsToZero(t *testing.T) {
	rate := -3.0
	projected := Project(40, &rate, []int{20, 45})

	assert.Equal(t, 0.0, projected[45])
	for _, predicted := range projected {
		assert.GreaterOrEqual(t, predicted, 0.0)
	}
}

func TestProjectNilRate(t *testing.T) {
	projected := Project(120, nil, DefaultHorizons)

	assert.Empty(t, projected)
}

func TestProjectRisingTrendHasNoUpperClamp(t *testing.T) {
	rate := 5.0
	projected := Project(300, &rate, []int{45})

	assert.Equal(t, 525.0, projected[45])
}
