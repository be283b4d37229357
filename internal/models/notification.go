package models

import "time"

// Notification kinds. Likes are deduplicated per (post, actor) while
// unread; every comment produces a fresh notification.
const (
	NotificationLike    = "LIKE"
	NotificationComment = "COMMENT"
)

// Notification is a ledger row for a like/comment activity event.
// It is created unread and only ever transitions to read; never deleted.
type Notification struct {
	ID             int64     `json:"id" db:"id"`
	PostID         int64     `json:"postId" db:"post_id"`
	Kind           string    `json:"kind" db:"kind"`
	ActorEmail     string    `json:"actorEmail" db:"actor_email"`
	RecipientEmail string    `json:"recipientEmail" db:"recipient_email"`
	IsRead         bool      `json:"isRead" db:"is_read"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// NotificationView is the projection pushed to clients and returned by
// the list endpoints: the ledger row plus the resolved actor name and a
// short preview of the post it refers to.
type NotificationView struct {
	Notification
	ActorName   string `json:"actorName"`
	PostPreview string `json:"postPreview,omitempty"`
}
