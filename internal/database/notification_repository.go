package database

import (
	"context"
	"database/sql"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"
)

// --- Notification Ledger ---

// InsertLikeNotificationIfAbsent inserts an unread LIKE notification
// unless one already exists for the same (post, actor). The partial
// unique index notifications_unread_like_idx turns the check-and-insert
// into a single atomic statement, so two concurrent likers cannot both
// insert. Returns true when a row was actually created.
func (p *PostgresDB) InsertLikeNotificationIfAbsent(ctx context.Context, n *models.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (post_id, kind, actor_email, recipient_email, is_read)
		VALUES ($1, 'LIKE', $2, $3, FALSE)
		ON CONFLICT (post_id, actor_email) WHERE kind = 'LIKE' AND is_read = FALSE
		DO NOTHING
		RETURNING id, created_at
	`
	err := p.DB.QueryRowxContext(ctx, query, n.PostID, n.ActorEmail, n.RecipientEmail).
		Scan(&n.ID, &n.CreatedAt)
	if err == sql.ErrNoRows {
		// Conflict: an unread LIKE notification for this pair already exists.
		return false, nil
	}
	if err != nil {
		return false, utils.NewStoreError("failed to insert like notification", err)
	}
	n.Kind = models.NotificationLike
	n.IsRead = false
	return true, nil
}

// InsertCommentNotification always inserts; comments are never deduplicated.
func (p *PostgresDB) InsertCommentNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (post_id, kind, actor_email, recipient_email, is_read)
		VALUES ($1, 'COMMENT', $2, $3, FALSE)
		RETURNING id, created_at
	`
	err := p.DB.QueryRowxContext(ctx, query, n.PostID, n.ActorEmail, n.RecipientEmail).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return utils.NewStoreError("failed to insert comment notification", err)
	}
	n.Kind = models.NotificationComment
	n.IsRead = false
	return nil
}

// ListNotifications returns a recipient's notifications, newest first.
func (p *PostgresDB) ListNotifications(ctx context.Context, recipient string, unreadOnly bool) ([]*models.Notification, error) {
	query := `
		SELECT id, post_id, kind, actor_email, recipient_email, is_read, created_at
		FROM notifications
		WHERE recipient_email = $1
	`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var notifications []*models.Notification
	err := p.DB.SelectContext(ctx, &notifications, query, recipient)
	if err != nil {
		return nil, utils.NewStoreError("failed to query notifications", err)
	}
	if notifications == nil {
		notifications = make([]*models.Notification, 0)
	}
	return notifications, nil
}

// MarkNotificationRead flips a single notification to read and returns
// the recipient so the caller can push a fresh unread count.
func (p *PostgresDB) MarkNotificationRead(ctx context.Context, id int64) (string, error) {
	query := `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1
		RETURNING recipient_email
	`
	var recipient string
	err := p.DB.QueryRowxContext(ctx, query, id).Scan(&recipient)
	if err == sql.ErrNoRows {
		return "", utils.NewAppError(utils.ErrNotFound, "notification not found", nil)
	}
	if err != nil {
		return "", utils.NewStoreError("failed to mark notification read", err)
	}
	return recipient, nil
}

// MarkAllNotificationsRead flips every unread notification for a recipient.
func (p *PostgresDB) MarkAllNotificationsRead(ctx context.Context, recipient string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE recipient_email = $1 AND is_read = FALSE`
	_, err := p.DB.ExecContext(ctx, query, recipient)
	if err != nil {
		return utils.NewStoreError("failed to mark notifications read", err)
	}
	return nil
}

// CountUnreadNotifications counts a recipient's unread notifications.
func (p *PostgresDB) CountUnreadNotifications(ctx context.Context, recipient string) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_email = $1 AND is_read = FALSE`
	var count int64
	err := p.DB.GetContext(ctx, &count, query, recipient)
	if err != nil {
		return 0, utils.NewStoreError("failed to count unread notifications", err)
	}
	return count, nil
}
