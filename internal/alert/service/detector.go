package service

import (
	"fmt"
	"sort"

	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
)

// Detect turns the current value and its projection into alert
// candidates. The current value is evaluated first (urgent preferred
// over warning on each side), then predicted values in ascending
// horizon order. A type already produced suppresses later candidates of
// the same type, so only the earliest qualifying horizon contributes.
// IoB never gates crossings here; it only feeds severity.
func Detect(current int, trendRate *float64, trajectory map[int]float64, th *thresholddomain.Thresholds) []alertdomain.Candidate {
	candidates := make([]alertdomain.Candidate, 0, 4)
	seen := make(map[alertdomain.Type]bool)

	add := func(c alertdomain.Candidate) {
		if seen[c.Type] {
			return
		}
		seen[c.Type] = true
		c.TrendRate = trendRate
		candidates = append(candidates, c)
	}

	// Current value: at most one low-side and one high-side candidate.
	if current <= th.UrgentLow {
		add(currentCandidate(alertdomain.TypeLowUrgent, current))
	} else if current <= th.LowWarning {
		add(currentCandidate(alertdomain.TypeLowWarning, current))
	}

	if current >= th.UrgentHigh {
		add(currentCandidate(alertdomain.TypeHighUrgent, current))
	} else if current >= th.HighWarning {
		add(currentCandidate(alertdomain.TypeHighWarning, current))
	}

	horizons := make([]int, 0, len(trajectory))
	for minutes := range trajectory {
		horizons = append(horizons, minutes)
	}
	sort.Ints(horizons)

	for _, minutes := range horizons {
		predicted := trajectory[minutes]

		if predicted <= float64(th.UrgentLow) {
			add(predictiveCandidate(alertdomain.TypeLowUrgent, current, predicted, minutes))
		} else if predicted <= float64(th.LowWarning) {
			add(predictiveCandidate(alertdomain.TypeLowWarning, current, predicted, minutes))
		}

		if predicted >= float64(th.UrgentHigh) {
			add(predictiveCandidate(alertdomain.TypeHighUrgent, current, predicted, minutes))
		} else if predicted >= float64(th.HighWarning) {
			add(predictiveCandidate(alertdomain.TypeHighWarning, current, predicted, minutes))
		}
	}

	return candidates
}

func currentCandidate(alertType alertdomain.Type, current int) alertdomain.Candidate {
	return alertdomain.Candidate{
		Type:         alertType,
		Severity:     baseSeverity[alertType],
		CurrentValue: current,
		Source:       alertdomain.SourceCurrent,
		Message:      currentMessage(alertType, current),
	}
}

func predictiveCandidate(alertType alertdomain.Type, current int, predicted float64, minutes int) alertdomain.Candidate {
	return alertdomain.Candidate{
		Type:              alertType,
		Severity:          baseSeverity[alertType],
		CurrentValue:      current,
		PredictedValue:    &predicted,
		PredictionMinutes: &minutes,
		Source:            alertdomain.SourcePredictive,
		Message:           predictiveMessage(alertType, predicted, minutes),
	}
}

func currentMessage(alertType alertdomain.Type, current int) string {
	switch alertType {
	case alertdomain.TypeLowUrgent:
		return fmt.Sprintf("Urgent low glucose: %d mg/dL", current)
	case alertdomain.TypeLowWarning:
		return fmt.Sprintf("Low glucose: %d mg/dL", current)
	case alertdomain.TypeHighWarning:
		return fmt.Sprintf("High glucose: %d mg/dL", current)
	case alertdomain.TypeHighUrgent:
		return fmt.Sprintf("Urgent high glucose: %d mg/dL", current)
	}
	return fmt.Sprintf("Glucose alert: %d mg/dL", current)
}

func predictiveMessage(alertType alertdomain.Type, predicted float64, minutes int) string {
	switch alertType {
	case alertdomain.TypeLowUrgent:
		return fmt.Sprintf("Glucose predicted to fall to %.0f mg/dL within %d min (urgent low)", predicted, minutes)
	case alertdomain.TypeLowWarning:
		return fmt.Sprintf("Glucose predicted to fall to %.0f mg/dL within %d min", predicted, minutes)
	case alertdomain.TypeHighWarning:
		return fmt.Sprintf("Glucose predicted to rise to %.0f mg/dL within %d min", predicted, minutes)
	case alertdomain.TypeHighUrgent:
		return fmt.Sprintf("Glucose predicted to rise to %.0f mg/dL within %d min (urgent high)", predicted, minutes)
	}
	return fmt.Sprintf("Glucose predicted to reach %.0f mg/dL within %d min", predicted, minutes)
}
