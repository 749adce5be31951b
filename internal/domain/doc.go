// Package domain models marine-weather observations for monitored coastal
// sites and the safety scoring derived from them.
//
// # Data Source
//
// Observations originate from the Stormglass point-weather API
// (https://api.stormglass.io/v2/weather/point). A request names a
// coordinate, an ISO-8601 time range, a comma-separated parameter list, and
// a single data source designator. The response is an hour-indexed series:
// each hour carries an ISO-8601 "time" plus one entry per requested
// parameter. When no API credential is configured the client substitutes a
// synthetic series with the same shape, so nothing downstream of the client
// knows (or cares) where a series came from.
//
// # Parameter Conventions
//
// Each parameter within an hour is keyed by data source:
//
//	"waveHeight": {"sg": 1.25}
//
// Because the client pins the single source "sg", every parameter is a
// one-entry map and reads as a single scalar. A legacy convention encodes a
// parameter as a list of {source, value} pairs:
//
//	"waveHeight": [{"source": "noaa", "value": 1.0}, {"source": "sg", "value": 1.5}]
//
// which [ParameterValue] averages into one scalar for backward
// compatibility. Every parameter is independently optional — providers omit
// fields freely — so extracted values are pointers and nil means
// "not reported".
//
// # Safety Scoring
//
// [Score] starts at 100 and subtracts a fixed penalty per breached
// threshold. Penalties are additive and independent because dangerous
// conditions compound:
//
//	wave height:   ≥1.5 m  −20   ≥2.5 m  −40
//	wind speed:    ≥10 m/s −15   ≥15 m/s −30
//	current speed: ≥0.5 m/s −15  ≥1.0 m/s −30
//
// The clamped score maps to a suitability level: ≥80 safe, 50–79 warning,
// <50 danger. When wave height, wind speed, and current speed are all
// absent the hour is unmeasured, not safe: the result is pinned to
// (50, unknown) with a single insufficient-data warning. This keeps
// "nothing dangerous" distinguishable from "nothing measured" — a site with
// no recorded observation must never be reported with a fabricated score.
//
// # Staleness Window
//
// A site whose newest stored observation is younger than the staleness
// window (3 hours by default) is not re-fetched. Under the scheduler's
// one-hour cadence this is what prevents redundant upstream calls and
// duplicate-hour rows; the store itself performs plain appends with no
// uniqueness constraint.
package domain
