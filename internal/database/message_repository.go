package database

import (
	"context"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"

	"github.com/lib/pq"
)

// --- Message Store ---

// AppendMessage inserts a new direct message and returns the
// store-assigned id. The id is monotonic (BIGSERIAL), which the
// conversation fold uses as the tie-break when timestamps collide.
func (p *PostgresDB) AppendMessage(ctx context.Context, msg *models.DirectMessage) (int64, error) {
	query := `
		INSERT INTO messages (sender_email, receiver_email, content, image_path, sent_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING id
	`
	var id int64
	err := p.DB.QueryRowxContext(ctx, query, msg.Sender, msg.Receiver, msg.Content, msg.ImagePath, msg.SentAt).Scan(&id)
	if err != nil {
		return 0, utils.NewStoreError("failed to append message", err)
	}
	msg.ID = id
	return id, nil
}

// GetMessagesInvolving fetches every message sent or received by a user,
// in store order. The caller folds them; no ordering is assumed here.
func (p *PostgresDB) GetMessagesInvolving(ctx context.Context, email string) ([]*models.DirectMessage, error) {
	query := `
		SELECT id, sender_email, receiver_email, COALESCE(content, '') AS content,
		       COALESCE(image_path, '') AS image_path, sent_at, read_at
		FROM messages
		WHERE sender_email = $1 OR receiver_email = $1
	`
	var messages []*models.DirectMessage
	err := p.DB.SelectContext(ctx, &messages, query, email)
	if err != nil {
		return nil, utils.NewStoreError("failed to query user messages", err)
	}
	if messages == nil {
		messages = make([]*models.DirectMessage, 0)
	}
	return messages, nil
}

// GetMessagesBetween fetches the full history between two users, oldest
// first; equal timestamps fall back to id order.
func (p *PostgresDB) GetMessagesBetween(ctx context.Context, a, b string) ([]*models.DirectMessage, error) {
	query := `
		SELECT id, sender_email, receiver_email, COALESCE(content, '') AS content,
		       COALESCE(image_path, '') AS image_path, sent_at, read_at
		FROM messages
		WHERE (sender_email = $1 AND receiver_email = $2)
		   OR (sender_email = $2 AND receiver_email = $1)
		ORDER BY sent_at ASC NULLS FIRST, id ASC
	`
	var messages []*models.DirectMessage
	err := p.DB.SelectContext(ctx, &messages, query, a, b)
	if err != nil {
		return nil, utils.NewStoreError("failed to query message history", err)
	}
	if messages == nil {
		messages = make([]*models.DirectMessage, 0)
	}
	return messages, nil
}

// MarkMessagesRead sets read_at for the given message ids, but only on
// messages addressed to the reader. Already-read messages are left as is.
func (p *PostgresDB) MarkMessagesRead(ctx context.Context, ids []int64, reader string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE messages SET read_at = NOW()
		WHERE id = ANY($1) AND receiver_email = $2 AND read_at IS NULL
	`
	_, err := p.DB.ExecContext(ctx, query, pq.Array(ids), reader)
	if err != nil {
		return utils.NewStoreError("failed to mark messages read", err)
	}
	return nil
}
