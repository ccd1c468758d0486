package service

import (
	"testing"

	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultThresholds() *thresholddomain.Thresholds {
	return &thresholddomain.Thresholds{
		UrgentLow:   55,
		LowWarning:  70,
		HighWarning: 180,
		UrgentHigh:  250,
		IOBWarning:  3.0,
	}
}

func TestDetectCurrentUrgentLow(t *testing.T) {
	candidates := Detect(50, nil, nil, defaultThresholds())

	require.Len(t, candidates, 1)
	assert.Equal(t, alertdomain.TypeLowUrgent, candidates[0].Type)
	assert.Equal(t, alertdomain.SourceCurrent, candidates[0].Source)
	assert.Equal(t, 50, candidates[0].CurrentValue)
	assert.Nil(t, candidates[0].PredictedValue)
}

func TestDetectCurrentLowWarningNotUrgent(t *testing.T) {
	candidates := Detect(60, nil, nil, defaultThresholds())

	require.Len(t, candidates, 1)
	assert.Equal(t, alertdomain.TypeLowWarning, candidates[0].Type)
}

func TestDetectPredictiveEarliestHorizonWins(t *testing.T) {
	rate := -2.0
	trajectory := Project(95, &rate, []int{20, 30, 45})

	candidates := Detect(95, &rate, trajectory, defaultThresholds())

	require.Len(t, candidates, 1)
	assert.Equal(t, alertdomain.TypeLowUrgent, candidates[0].Type)
	assert.Equal(t, alertdomain.SourcePredictive, candidates[0].Source)
	require.NotNil(t, candidates[0].PredictionMinutes)
	assert.Equal(t, 20, *candidates[0].PredictionMinutes)
	require.NotNil(t, candidates[0].PredictedValue)
	assert.Equal(t, 55.0, *candidates[0].PredictedValue)
}

func TestDetectCurrentSuppressesPredictiveDuplicate(t *testing.T) {
	rate := 1.0
	trajectory := Project(260, &rate, []int{20, 30, 45})

	candidates := Detect(260, &rate, trajectory, defaultThresholds())

	require.Len(t, candidates, 1)
	assert.Equal(t, alertdomain.TypeHighUrgent, candidates[0].Type)
	assert.Equal(t, alertdomain.SourceCurrent, candidates[0].Source)
}

func TestDetectAtMostOneCandidatePerType(t *testing.T) {
	rate := -1.5
	trajectory := Project(75, &rate, []int{20, 30, 45})

	// 75 is in range; predictions 52.5, 30, 7.5 all cross urgent_low.
	candidates := Detect(75, &rate, trajectory, defaultThresholds())

	seen := make(map[alertdomain.Type]int)
	for _, c := range candidates {
		seen[c.Type]++
	}
	for alertType, count := range seen {
		assert.Equal(t, 1, count, "type %s produced %d candidates", alertType, count)
	}
}

func TestDetectNormalRangeNoCandidates(t *testing.T) {
	candidates := Detect(110, nil, nil, defaultThresholds())

	assert.Empty(t, candidates)
}
