// internal/database/postgres.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"campus-connect/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DBAdapter defines the common interface for database operations.
// It bundles the collaborators of the engine: the append-only message
// store, the notification ledger, and the member/post directories.
type DBAdapter interface {
	// Connection
	Close(ctx context.Context) error

	// Member directory
	SaveMember(ctx context.Context, member *models.Member) error
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	ResolveDisplayName(ctx context.Context, email string) (string, error)

	// Post directory
	SavePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, postID int64) (*models.Post, error)
	RecordLike(ctx context.Context, postID int64, memberEmail string) (bool, error)
	SaveComment(ctx context.Context, comment *models.Comment) error

	// Message store. Append-only: no update or delete of content, the
	// read marker is the single mutable field.
	AppendMessage(ctx context.Context, msg *models.DirectMessage) (int64, error)
	GetMessagesInvolving(ctx context.Context, email string) ([]*models.DirectMessage, error)
	GetMessagesBetween(ctx context.Context, a, b string) ([]*models.DirectMessage, error)
	MarkMessagesRead(ctx context.Context, ids []int64, reader string) error

	// Notification ledger
	InsertLikeNotificationIfAbsent(ctx context.Context, n *models.Notification) (bool, error)
	InsertCommentNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipient string, unreadOnly bool) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (string, error)
	MarkAllNotificationsRead(ctx context.Context, recipient string) error
	CountUnreadNotifications(ctx context.Context, recipient string) (int64, error)
}

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	DB *sqlx.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Ping the database to verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL!")

	return &PostgresDB{
		DB: db,
	}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	log.Println("Closing PostgreSQL connection...")
	return p.DB.Close()
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	// Members table
	_, err := p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS members (
			id UUID PRIMARY KEY,
			email VARCHAR(100) UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create members table: %v", err)
	}

	// Posts table
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			author_email VARCHAR(100) NOT NULL REFERENCES members(email),
			content TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create posts table: %v", err)
	}

	// Likes table. One like per (post, member).
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS post_likes (
			post_id BIGINT NOT NULL REFERENCES posts(id),
			member_email VARCHAR(100) NOT NULL REFERENCES members(email),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (post_id, member_email)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create post_likes table: %v", err)
	}

	// Comments table
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS comments (
			id BIGSERIAL PRIMARY KEY,
			post_id BIGINT NOT NULL REFERENCES posts(id),
			author_email VARCHAR(100) NOT NULL REFERENCES members(email),
			content TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create comments table: %v", err)
	}

	// Messages table. BIGSERIAL gives the monotonic write-time id the
	// conversation tie-break relies on. sent_at is nullable: clients may
	// omit it, and the fold handles the absent case.
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			sender_email VARCHAR(100) NOT NULL,
			receiver_email VARCHAR(100) NOT NULL,
			content TEXT,
			image_path VARCHAR(255),
			sent_at TIMESTAMP WITH TIME ZONE,
			read_at TIMESTAMP WITH TIME ZONE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages table: %v", err)
	}

	// Index the participants for the per-user scan.
	_, err = p.DB.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS messages_sender_idx ON messages (sender_email);
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages sender index: %v", err)
	}
	_, err = p.DB.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS messages_receiver_idx ON messages (receiver_email);
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages receiver index: %v", err)
	}

	// Notifications table
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS notifications (
			id BIGSERIAL PRIMARY KEY,
			post_id BIGINT NOT NULL REFERENCES posts(id),
			kind VARCHAR(20) NOT NULL,
			actor_email VARCHAR(100) NOT NULL,
			recipient_email VARCHAR(100) NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %v", err)
	}

	// At most one unread LIKE notification per (post, actor). The partial
	// unique index makes the check-and-insert atomic under concurrent
	// likers; see InsertLikeNotificationIfAbsent.
	_, err = p.DB.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS notifications_unread_like_idx
		ON notifications (post_id, actor_email)
		WHERE kind = 'LIKE' AND is_read = FALSE
	`)
	if err != nil {
		return fmt.Errorf("failed to create unread-like unique index: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS notifications_recipient_idx
		ON notifications (recipient_email, is_read, created_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create notifications recipient index: %v", err)
	}

	return nil
}
