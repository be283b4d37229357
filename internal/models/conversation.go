package models

import "time"

// ConversationSummary is the derived "inbox" entry for one counterpart.
// It is recomputed from the message log on every request and never
// persisted.
type ConversationSummary struct {
	CounterpartEmail string     `json:"counterpartEmail"`
	CounterpartName  string     `json:"counterpartName"`
	LastMessage      string     `json:"lastMessage"`
	LastMessageAt    *time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount      int64      `json:"unreadCount"`

	// LastMessageID is kept for deterministic ordering between entries
	// whose last messages share a timestamp.
	LastMessageID int64 `json:"-"`
}
