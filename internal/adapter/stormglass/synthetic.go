package stormglass

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"time"
)

// syntheticRanges bounds the generated value per parameter, tuned to
// plausible tropical coastal conditions so scoring exercises all three
// suitability levels over a long enough series.
var syntheticRanges = []struct {
	name     string
	min, max float64
}{
	{"waveHeight", 0.5, 3.0},
	{"waveDirection", 0, 360},
	{"wavePeriod", 5, 15},
	{"swellHeight", 0.2, 2.0},
	{"swellDirection", 0, 360},
	{"swellPeriod", 5, 20},
	{"windSpeed", 2, 20},
	{"windDirection", 0, 360},
	{"visibility", 5, 20},
	{"waterTemperature", 20, 30},
	{"currentSpeed", 0.1, 1.5},
	{"currentDirection", 0, 360},
}

// syntheticSeries generates one sample per hour in [start, end], shaped
// exactly like a Stormglass response so the parser cannot tell them apart.
func syntheticSeries(start, end time.Time) []byte {
	var hours []map[string]any
	for ts := start.UTC().Truncate(time.Hour); !ts.After(end.UTC()); ts = ts.Add(time.Hour) {
		hour := map[string]any{
			"time": ts.Format("2006-01-02T15:04:05"),
		}
		for _, p := range syntheticRanges {
			value := p.min + rand.Float64()*(p.max-p.min)
			hour[p.name] = map[string]float64{"sg": math.Round(value*100) / 100}
		}
		hours = append(hours, hour)
	}

	payload, _ := json.Marshal(map[string]any{"hours": hours})
	return payload
}
