package service

// DefaultHorizons are the projection horizons in minutes. Short horizons
// keep linear extrapolation an acceptable approximation.
var DefaultHorizons = []int{20, 30, 45}

// Project extrapolates future glucose values from the current value and
// trend rate (mg/dL per minute): predicted = current + rate*minutes,
// clamped to a floor of 0. A nil rate yields no predictions.
func Project(current int, trendRate *float64, horizons []int) map[int]float64 {
	projected := make(map[int]float64, len(horizons))
	if trendRate == nil {
		return projected
	}

	for _, minutes := range horizons {
		predicted := float64(current) + *trendRate*float64(minutes)
		if predicted < 0 {
			predicted = 0
		}
		projected[minutes] = predicted
	}

	return projected
}
