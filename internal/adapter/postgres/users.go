package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
)

// UserRepository reads notification candidates from PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListActiveWithLocation returns active users that have shared a current
// location. Users without one cannot be distance-matched and are excluded
// here rather than in the fan-out.
func (r *UserRepository) ListActiveWithLocation(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT id, email, is_active,
			current_latitude, current_longitude, notification_radius_km,
			email_notifications, push_notifications
		FROM users
		WHERE is_active
			AND current_latitude IS NOT NULL
			AND current_longitude IS NOT NULL
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query notifiable users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.IsActive,
			&u.Latitude, &u.Longitude, &u.NotificationRadiusKm,
			&u.EmailNotifications, &u.PushNotifications,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
