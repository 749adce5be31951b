package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

// --- mocks ---

type mockUserRepo struct {
	users []domain.User
	err   error
}

func (m *mockUserRepo) ListActiveWithLocation(_ context.Context) ([]domain.User, error) {
	return m.users, m.err
}

type mockNotificationRepo struct {
	created []domain.Notification
	err     error
}

func (m *mockNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, *n)
	return nil
}

type sentMail struct {
	recipient string
	subject   string
	body      string
}

type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(_ context.Context, recipient, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{recipient: recipient, subject: subject, body: htmlBody})
	return nil
}

type mockPublisher struct {
	published []domain.Notification
	err       error
}

func (m *mockPublisher) PublishAlert(_ context.Context, n domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, n)
	return nil
}

// --- helpers ---

func fp(v float64) *float64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testSite = domain.Site{
	ID:        7,
	Name:      "Marina Beach",
	Latitude:  13.05,
	Longitude: 80.282,
	IsActive:  true,
}

func newNotifier(users *mockUserRepo, notifications *mockNotificationRepo, mailer Mailer, publisher AlertPublisher) *Notifier {
	return New(users, notifications, mailer, publisher, 10.0, observability.NewMetricsForTesting(), discardLogger())
}

// --- tests ---

func TestNotifyNearbyUsersNoopBelowWarning(t *testing.T) {
	users := &mockUserRepo{err: errors.New("must not be called")}
	notifications := &mockNotificationRepo{}
	n := newNotifier(users, notifications, nil, nil)

	for _, level := range []domain.SuitabilityLevel{domain.LevelSafe, domain.LevelUnknown} {
		created, err := n.NotifyNearbyUsers(context.Background(), testSite, "calm", level)
		require.NoError(t, err)
		assert.Empty(t, created)
	}
	assert.Empty(t, notifications.created)
}

func TestNotifyNearbyUsersRadiusIsInclusive(t *testing.T) {
	userLat, userLon := 13.0003, 80.2719
	distance := domain.HaversineKm(userLat, userLon, testSite.Latitude, testSite.Longitude)

	users := &mockUserRepo{users: []domain.User{
		{ID: 1, Email: "edge@example.com", IsActive: true, Latitude: fp(userLat), Longitude: fp(userLon), NotificationRadiusKm: fp(distance)},
		{ID: 2, Email: "outside@example.com", IsActive: true, Latitude: fp(userLat), Longitude: fp(userLon), NotificationRadiusKm: fp(distance - 0.1)},
	}}
	notifications := &mockNotificationRepo{}
	n := newNotifier(users, notifications, nil, nil)

	created, err := n.NotifyNearbyUsers(context.Background(), testSite, "Dangerous wave height: 3.2 meters", domain.LevelDanger)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, int64(1), created[0].UserID)
	assert.InDelta(t, distance, created[0].DistanceKm, 1e-9)
}

func TestNotifyNearbyUsersDefaultRadius(t *testing.T) {
	users := &mockUserRepo{users: []domain.User{
		// ~5.6 km away, no custom radius: the 10 km default applies.
		{ID: 1, Email: "near@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719)},
		// ~111 km away, far outside the default.
		{ID: 2, Email: "far@example.com", IsActive: true, Latitude: fp(14.05), Longitude: fp(80.282)},
	}}
	notifications := &mockNotificationRepo{}
	n := newNotifier(users, notifications, nil, nil)

	created, err := n.NotifyNearbyUsers(context.Background(), testSite, "Warning: High waves at 1.8 meters", domain.LevelWarning)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, int64(1), created[0].UserID)
}

func TestNotifyNearbyUsersContent(t *testing.T) {
	users := &mockUserRepo{users: []domain.User{
		{ID: 1, Email: "near@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719)},
	}}
	notifications := &mockNotificationRepo{}
	n := newNotifier(users, notifications, nil, nil)

	created, err := n.NotifyNearbyUsers(context.Background(), testSite, "Dangerous currents: 1.2 m/s", domain.LevelDanger)
	require.NoError(t, err)
	require.Len(t, created, 1)

	got := created[0]
	assert.Equal(t, "DANGER - Marina Beach", got.Title)
	assert.Equal(t,
		fmt.Sprintf("Beach safety alert for Marina Beach: Dangerous currents: 1.2 m/s. Current distance: %.1f km.", got.DistanceKm),
		got.Content)
	assert.Equal(t, domain.NotificationTypeSafetyAlert, got.Type)
	assert.False(t, got.IsRead)
	assert.NotEqual(t, created[0].ID.String(), "00000000-0000-0000-0000-000000000000")
	require.Len(t, notifications.created, 1)
}

func TestNotifyNearbyUsersEmailOnlyWhenOptedIn(t *testing.T) {
	users := &mockUserRepo{users: []domain.User{
		{ID: 1, Email: "optin@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719), EmailNotifications: true},
		{ID: 2, Email: "optout@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719)},
	}}
	notifications := &mockNotificationRepo{}
	mailer := &mockMailer{}
	n := newNotifier(users, notifications, mailer, nil)

	created, err := n.NotifyNearbyUsers(context.Background(), testSite, "Dangerous wind conditions: 17 m/s", domain.LevelDanger)
	require.NoError(t, err)
	assert.Len(t, created, 2)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "optin@example.com", mailer.sent[0].recipient)
	assert.Equal(t, "DANGER - Marina Beach", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "Dangerous wind conditions: 17 m/s")
	assert.Contains(t, mailer.sent[0].body, "<strong>danger</strong>")
}

func TestNotifyNearbyUsersEmailFailureTolerated(t *testing.T) {
	users := &mockUserRepo{users: []domain.User{
		{ID: 1, Email: "optin@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719), EmailNotifications: true},
	}}
	notifications := &mockNotificationRepo{}
	mailer := &mockMailer{err: errors.New("smtp down")}
	n := newNotifier(users, notifications, mailer, nil)

	created, err := n.NotifyNearbyUsers(context.Background(), testSite, "Dangerous currents: 1.2 m/s", domain.LevelDanger)
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Len(t, notifications.created, 1)
}

func TestNotifyNearbyUsersPublishesEventsWhenOptedIn(t *testing.T) {
	users := &mockUserRepo{users: []domain.User{
		{ID: 1, Email: "push@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719), PushNotifications: true},
		{ID: 2, Email: "nopush@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719)},
	}}
	notifications := &mockNotificationRepo{}
	publisher := &mockPublisher{}
	n := newNotifier(users, notifications, nil, publisher)

	created, err := n.NotifyNearbyUsers(context.Background(), testSite, "Dangerous wave height: 3.2 meters", domain.LevelDanger)
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, created[0].ID, publisher.published[0].ID)
	assert.Equal(t, int64(1), publisher.published[0].UserID)
}

func TestNotifyNearbyUsersPublishFailureTolerated(t *testing.T) {
	users := &mockUserRepo{users: []domain.User{
		{ID: 1, Email: "near@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719), PushNotifications: true},
	}}
	notifications := &mockNotificationRepo{}
	publisher := &mockPublisher{err: errors.New("broker down")}
	n := newNotifier(users, notifications, nil, publisher)

	created, err := n.NotifyNearbyUsers(context.Background(), testSite, "Dangerous wave height: 3.2 meters", domain.LevelDanger)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestNotifyNearbyUsersPersistFailureSkipsUser(t *testing.T) {
	users := &mockUserRepo{users: []domain.User{
		{ID: 1, Email: "near@example.com", IsActive: true, Latitude: fp(13.0003), Longitude: fp(80.2719), EmailNotifications: true},
	}}
	notifications := &mockNotificationRepo{err: errors.New("constraint violation")}
	mailer := &mockMailer{}
	n := newNotifier(users, notifications, mailer, nil)

	created, err := n.NotifyNearbyUsers(context.Background(), testSite, "Dangerous currents: 1.2 m/s", domain.LevelDanger)
	require.NoError(t, err)
	assert.Empty(t, created)
	// No email without a persisted notification.
	assert.Empty(t, mailer.sent)
}

func TestNotifyNearbyUsersListErrorPropagates(t *testing.T) {
	users := &mockUserRepo{err: errors.New("database down")}
	n := newNotifier(users, &mockNotificationRepo{}, nil, nil)

	_, err := n.NotifyNearbyUsers(context.Background(), testSite, "Dangerous currents: 1.2 m/s", domain.LevelDanger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database down")
}
