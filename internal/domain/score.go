package domain

import "fmt"

// Thresholds holds the warning and danger cutoffs for the three scored
// parameters. Values are inclusive: a reading equal to the cutoff breaches
// it.
type Thresholds struct {
	WaveHeightWarning   float64 // meters
	WaveHeightDanger    float64
	WindSpeedWarning    float64 // m/s
	WindSpeedDanger     float64
	CurrentSpeedWarning float64 // m/s
	CurrentSpeedDanger  float64
}

// DefaultThresholds returns the standard beach-safety cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WaveHeightWarning:   1.5,
		WaveHeightDanger:    2.5,
		WindSpeedWarning:    10.0,
		WindSpeedDanger:     15.0,
		CurrentSpeedWarning: 0.5,
		CurrentSpeedDanger:  1.0,
	}
}

// ScoreResult is the outcome of scoring one observation hour.
type ScoreResult struct {
	Score    int
	Level    SuitabilityLevel
	Warnings []string
}

// Score computes the 0-100 safety score for one hour of readings. Each
// parameter is optional; an absent parameter contributes no penalty. When
// all three are absent the hour is unmeasured and the result is pinned to
// (50, unknown) with a single insufficient-data warning.
func Score(waveHeight, windSpeed, currentSpeed *float64, th Thresholds) ScoreResult {
	if waveHeight == nil && windSpeed == nil && currentSpeed == nil {
		return ScoreResult{
			Score:    50,
			Level:    LevelUnknown,
			Warnings: []string{"Insufficient weather data available"},
		}
	}

	score := 100
	var warnings []string

	if waveHeight != nil {
		switch {
		case *waveHeight >= th.WaveHeightDanger:
			score -= 40
			warnings = append(warnings, fmt.Sprintf("Dangerous wave height: %g meters", *waveHeight))
		case *waveHeight >= th.WaveHeightWarning:
			score -= 20
			warnings = append(warnings, fmt.Sprintf("Warning: High waves at %g meters", *waveHeight))
		}
	}

	if windSpeed != nil {
		switch {
		case *windSpeed >= th.WindSpeedDanger:
			score -= 30
			warnings = append(warnings, fmt.Sprintf("Dangerous wind conditions: %g m/s", *windSpeed))
		case *windSpeed >= th.WindSpeedWarning:
			score -= 15
			warnings = append(warnings, fmt.Sprintf("Warning: Strong winds at %g m/s", *windSpeed))
		}
	}

	if currentSpeed != nil {
		switch {
		case *currentSpeed >= th.CurrentSpeedDanger:
			score -= 30
			warnings = append(warnings, fmt.Sprintf("Dangerous currents: %g m/s", *currentSpeed))
		case *currentSpeed >= th.CurrentSpeedWarning:
			score -= 15
			warnings = append(warnings, fmt.Sprintf("Warning: Strong currents at %g m/s", *currentSpeed))
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ScoreResult{Score: score, Level: levelForScore(score), Warnings: warnings}
}

func levelForScore(score int) SuitabilityLevel {
	switch {
	case score >= 80:
		return LevelSafe
	case score >= 50:
		return LevelWarning
	default:
		return LevelDanger
	}
}
