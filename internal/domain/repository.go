package domain

import (
	"context"
	"time"
)

// SiteRepository reads monitored sites. GetByID returns (nil, nil) when the
// site does not exist.
type SiteRepository interface {
	GetByID(ctx context.Context, id int64) (*Site, error)
	ListActive(ctx context.Context) ([]Site, error)
}

// ObservationRepository is the weather store. Append always inserts a new
// row — there is no upsert or merge; duplicate-hour protection is the
// orchestrator's staleness check, not the store's. Latest returns the
// observation with the maximum timestamp for the site, or (nil, nil) when
// the site has no history.
type ObservationRepository interface {
	Append(ctx context.Context, obs *Observation) error
	Latest(ctx context.Context, siteID int64) (*Observation, error)
	Range(ctx context.Context, siteID int64, start, end time.Time) ([]Observation, error)
}

// UserRepository lists notification candidates: active users that share a
// current location.
type UserRepository interface {
	ListActiveWithLocation(ctx context.Context) ([]User, error)
}

// NotificationRepository persists fan-out output.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
}
