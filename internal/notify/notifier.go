// Package notify fans safety alerts out to users near a site.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

// Mailer delivers one alert email.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

// AlertPublisher emits one alert event for downstream push delivery.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, n domain.Notification) error
}

// Notifier matches dangerous conditions against nearby users and records a
// notification per match. Email and event publication are best-effort; the
// persisted notification is the source of truth.
type Notifier struct {
	users           domain.UserRepository
	notifications   domain.NotificationRepository
	mailer          Mailer
	publisher       AlertPublisher
	defaultRadiusKm float64
	metrics         *observability.Metrics
	logger          *slog.Logger
}

// New constructs a Notifier. mailer and publisher may be nil when the
// corresponding channel is disabled.
func New(
	users domain.UserRepository,
	notifications domain.NotificationRepository,
	mailer Mailer,
	publisher AlertPublisher,
	defaultRadiusKm float64,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Notifier {
	return &Notifier{
		users:           users,
		notifications:   notifications,
		mailer:          mailer,
		publisher:       publisher,
		defaultRadiusKm: defaultRadiusKm,
		metrics:         metrics,
		logger:          logger,
	}
}

// NotifyNearbyUsers creates one notification per active located user within
// their notification radius of the site. It is a no-op unless level is
// warning or danger. Per-user persistence failures are logged and skipped
// so one bad row cannot block the rest of the fan-out.
func (n *Notifier) NotifyNearbyUsers(ctx context.Context, site domain.Site, warningMessage string, level domain.SuitabilityLevel) ([]domain.Notification, error) {
	if level != domain.LevelWarning && level != domain.LevelDanger {
		return nil, nil
	}

	users, err := n.users.ListActiveWithLocation(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifiable users: %w", err)
	}

	var created []domain.Notification
	for _, user := range users {
		if user.Latitude == nil || user.Longitude == nil {
			continue
		}

		distance := domain.HaversineKm(*user.Latitude, *user.Longitude, site.Latitude, site.Longitude)
		radius := n.defaultRadiusKm
		if user.NotificationRadiusKm != nil {
			radius = *user.NotificationRadiusKm
		}
		if distance > radius {
			continue
		}

		notification := domain.Notification{
			ID:         uuid.New(),
			UserID:     user.ID,
			SiteID:     site.ID,
			Title:      fmt.Sprintf("%s - %s", strings.ToUpper(string(level)), site.Name),
			Content:    fmt.Sprintf("Beach safety alert for %s: %s. Current distance: %.1f km.", site.Name, warningMessage, distance),
			Level:      level,
			DistanceKm: distance,
			Type:       domain.NotificationTypeSafetyAlert,
		}

		if err := n.notifications.Create(ctx, &notification); err != nil {
			n.logger.Error("failed to persist notification", "user_id", user.ID, "site_id", site.ID, "error", err)
			continue
		}
		n.metrics.NotificationsSent.Inc()
		created = append(created, notification)

		if n.publisher != nil && user.PushNotifications {
			if err := n.publisher.PublishAlert(ctx, notification); err != nil {
				n.metrics.AlertPublishFailures.Inc()
				n.logger.Warn("failed to publish alert event", "user_id", user.ID, "site_id", site.ID, "error", err)
			}
		}

		if n.mailer != nil && user.EmailNotifications {
			body := emailBody(site.Name, warningMessage, level, distance)
			if err := n.mailer.Send(ctx, user.Email, notification.Title, body); err != nil {
				n.metrics.EmailFailures.Inc()
				n.logger.Warn("failed to send alert email", "user_id", user.ID, "site_id", site.ID, "error", err)
			}
		}
	}

	return created, nil
}

func emailBody(siteName, warningMessage string, level domain.SuitabilityLevel, distanceKm float64) string {
	return fmt.Sprintf(`<html>
	<body>
		<h2>Beach Safety Alert</h2>
		<p>There is a <strong>%s</strong> condition at <strong>%s</strong>.</p>
		<p>%s</p>
		<p>Current distance: %.1f km.</p>
		<p>Stay safe and check the Beach Safety App for more information.</p>
	</body>
</html>`, level, siteName, warningMessage, distanceKm)
}
