package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
)

// NotificationRepository persists safety alerts in PostgreSQL.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository constructs a notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts one notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
		INSERT INTO notifications (
			id, user_id, site_id, title, content, level,
			distance_km, type, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.UserID, n.SiteID, n.Title, n.Content, string(n.Level),
		n.DistanceKm, n.Type, n.IsRead,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification for user %d: %w", n.UserID, err)
	}
	return nil
}
