package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a registered user. The email is the messaging identity used
// throughout the engine; the UUID only backs auth tokens.
type Member struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Post carries just enough of a post for the notification engine: its
// owner and a content preview source. Full post CRUD lives elsewhere.
type Post struct {
	ID          int64     `json:"id" db:"id"`
	AuthorEmail string    `json:"authorEmail" db:"author_email"`
	Content     string    `json:"content" db:"content"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Comment on a post.
type Comment struct {
	ID          int64     `json:"id" db:"id"`
	PostID      int64     `json:"postId" db:"post_id"`
	AuthorEmail string    `json:"authorEmail" db:"author_email"`
	Content     string    `json:"content" db:"content"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
