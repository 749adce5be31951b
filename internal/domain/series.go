package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// KnownParameters is the full parameter list requested from the provider.
// Parsing tolerates any subset being absent.
var KnownParameters = []string{
	"waveHeight",
	"waveDirection",
	"wavePeriod",
	"swellHeight",
	"swellDirection",
	"swellPeriod",
	"windSpeed",
	"windDirection",
	"gust",
	"waterTemperature",
	"airTemperature",
	"currentSpeed",
	"currentDirection",
	"visibility",
	"chlorophyll",
	"salinity",
	"pH",
	"oxygen",
}

type seriesEnvelope struct {
	Hours   []json.RawMessage `json:"hours"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
}

// ParseSeries converts a raw provider series into scored per-hour
// observations for one site. Hours that cannot be decoded or that lack a
// timestamp are skipped with a log line; an error-shaped envelope fails the
// whole series.
func ParseSeries(payload []byte, siteID int64, source string, th Thresholds, logger *slog.Logger) ([]Observation, error) {
	var envelope seriesEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decoding weather series: %w", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("weather series carries error: %s", envelope.Error)
	}
	if len(envelope.Hours) == 0 && envelope.Message != "" {
		return nil, fmt.Errorf("weather series carries no hours: %s", envelope.Message)
	}

	observations := make([]Observation, 0, len(envelope.Hours))
	for i, rawHour := range envelope.Hours {
		var hour map[string]json.RawMessage
		if err := json.Unmarshal(rawHour, &hour); err != nil {
			logger.Warn("skipping malformed hour record", "site_id", siteID, "index", i, "error", err)
			continue
		}

		ts, ok := hourTimestamp(hour)
		if !ok {
			logger.Warn("skipping hour record without timestamp", "site_id", siteID, "index", i)
			continue
		}

		obs := Observation{
			SiteID:     siteID,
			Timestamp:  ts,
			Source:     source,
			RawPayload: rawHour,

			WaveHeight:    ParameterValue(hour["waveHeight"]),
			WaveDirection: ParameterValue(hour["waveDirection"]),
			WavePeriod:    ParameterValue(hour["wavePeriod"]),

			SwellHeight:    ParameterValue(hour["swellHeight"]),
			SwellDirection: ParameterValue(hour["swellDirection"]),
			SwellPeriod:    ParameterValue(hour["swellPeriod"]),

			WindSpeed:     ParameterValue(hour["windSpeed"]),
			WindDirection: ParameterValue(hour["windDirection"]),
			WindGust:      ParameterValue(hour["gust"]),

			WaterTemperature: ParameterValue(hour["waterTemperature"]),
			AirTemperature:   ParameterValue(hour["airTemperature"]),

			CurrentSpeed:     ParameterValue(hour["currentSpeed"]),
			CurrentDirection: ParameterValue(hour["currentDirection"]),

			Chlorophyll: ParameterValue(hour["chlorophyll"]),
			Salinity:    ParameterValue(hour["salinity"]),
			PH:          ParameterValue(hour["pH"]),
			Oxygen:      ParameterValue(hour["oxygen"]),
		}

		result := Score(obs.WaveHeight, obs.WindSpeed, obs.CurrentSpeed, th)
		obs.SafetyScore = result.Score
		obs.SuitabilityLevel = result.Level
		obs.Warnings = result.Warnings

		observations = append(observations, obs)
	}

	return observations, nil
}

func hourTimestamp(hour map[string]json.RawMessage) (time.Time, bool) {
	raw, ok := hour["time"]
	if !ok {
		return time.Time{}, false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), true
	}
	// Synthetic series and some providers omit the zone suffix.
	if ts, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}

// ParameterValue extracts a single scalar from one parameter entry. The
// provider format is a source-keyed map holding the pinned "sg" source; the
// legacy format is a list of {source, value} pairs, averaged. Anything else
// reads as not reported.
func ParameterValue(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var bySource map[string]*float64
	if err := json.Unmarshal(raw, &bySource); err == nil {
		if v, ok := bySource["sg"]; ok && v != nil {
			value := *v
			return &value
		}
		return nil
	}

	var entries []struct {
		Source string   `json:"source"`
		Value  *float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &entries); err == nil {
		var sum float64
		var count int
		for _, e := range entries {
			if e.Value != nil {
				sum += *e.Value
				count++
			}
		}
		if count == 0 {
			return nil
		}
		avg := sum / float64(count)
		return &avg
	}

	return nil
}
