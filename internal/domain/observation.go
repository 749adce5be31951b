package domain

import (
	"time"

	"github.com/google/uuid"
)

// SuitabilityLevel is the discrete bucket a safety score maps to.
type SuitabilityLevel string

const (
	LevelSafe    SuitabilityLevel = "safe"
	LevelWarning SuitabilityLevel = "warning"
	LevelDanger  SuitabilityLevel = "danger"
	LevelUnknown SuitabilityLevel = "unknown"
)

// Site is a monitored coastal location. Sites are managed by the admin
// surface; the ingestion core only reads them.
type Site struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
	State     string
	City      string
	IsActive  bool
}

// Observation is one timestamped marine-weather record for a site,
// including the derived safety score. Every measured parameter is
// independently optional because upstream providers may omit any field;
// nil means "not reported". Observations are immutable once written and are
// never deleted by the core.
type Observation struct {
	ID        int64
	SiteID    int64
	Timestamp time.Time
	Source    string // upstream provider name or "synthetic"

	WaveHeight    *float64
	WaveDirection *float64
	WavePeriod    *float64

	SwellHeight    *float64
	SwellDirection *float64
	SwellPeriod    *float64

	WindSpeed     *float64
	WindDirection *float64
	WindGust      *float64

	WaterTemperature *float64
	AirTemperature   *float64

	CurrentSpeed     *float64
	CurrentDirection *float64

	Chlorophyll *float64
	Salinity    *float64
	PH          *float64
	Oxygen      *float64

	// RawPayload is the full provider hour record, retained for audit.
	RawPayload []byte

	SafetyScore      int
	SuitabilityLevel SuitabilityLevel

	// Warnings produced by scoring. Not persisted; consumed by the
	// notification fan-out.
	Warnings []string

	CreatedAt time.Time
}

// User mirrors the account record owned by the user subsystem. Location is
// optional — sharing it is the user's choice — and the radius falls back to
// a system-wide default when unset.
type User struct {
	ID                   int64
	Email                string
	IsActive             bool
	Latitude             *float64
	Longitude            *float64
	NotificationRadiusKm *float64
	EmailNotifications   bool
	PushNotifications    bool
}

// Notification is one safety alert addressed to a single user. Once
// persisted it belongs to the notification subsystem; the core does not
// retry or de-duplicate it across ingestion runs.
type Notification struct {
	ID         uuid.UUID        `json:"id"`
	UserID     int64            `json:"user_id"`
	SiteID     int64            `json:"site_id"`
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	Level      SuitabilityLevel `json:"level"`
	DistanceKm float64          `json:"distance_km"`
	Type       string           `json:"type"`
	IsRead     bool             `json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NotificationTypeSafetyAlert tags alerts produced by the ingestion core.
const NotificationTypeSafetyAlert = "safety_alert"
