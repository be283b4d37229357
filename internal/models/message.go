package models

import "time"

// DirectMessage is one entry in the append-only message log. The store
// assigns the ID at write time; content is never updated or deleted.
// ReadAt is the only mutable field.
type DirectMessage struct {
	ID        int64      `json:"id" db:"id"`
	Sender    string     `json:"sender" db:"sender_email"`
	Receiver  string     `json:"receiver" db:"receiver_email"`
	Content   string     `json:"content" db:"content"`
	ImagePath string     `json:"imagePath,omitempty" db:"image_path"`
	SentAt    *time.Time `json:"sentAt,omitempty" db:"sent_at"`
	ReadAt    *time.Time `json:"readAt,omitempty" db:"read_at"`
}

// Counterpart returns the other party of the message relative to the
// given user.
func (m *DirectMessage) Counterpart(userEmail string) string {
	if m.Sender == userEmail {
		return m.Receiver
	}
	return m.Sender
}
