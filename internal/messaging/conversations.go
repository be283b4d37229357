// Package messaging derives the per-user conversation inbox from the
// append-only message log.
package messaging

import (
	"context"
	"log"
	"sort"
	"time"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"
)

// MessageStore is the slice of the message store the deriver reads.
type MessageStore interface {
	GetMessagesInvolving(ctx context.Context, email string) ([]*models.DirectMessage, error)
}

// MemberDirectory resolves display names. Lookup failures degrade to the
// identity string; they never fail a request.
type MemberDirectory interface {
	ResolveDisplayName(ctx context.Context, email string) (string, error)
}

// ConversationService folds a user's messages into one summary per
// counterpart. It performs no writes and holds no state, so any number
// of requests may run concurrently.
type ConversationService struct {
	store       MessageStore
	members     MemberDirectory
	metrics     *utils.MetricsCollector
	readTimeout time.Duration
}

func NewConversationService(store MessageStore, members MemberDirectory, metrics *utils.MetricsCollector, readTimeout time.Duration) *ConversationService {
	return &ConversationService{
		store:       store,
		members:     members,
		metrics:     metrics,
		readTimeout: readTimeout,
	}
}

// GetConversations returns one summary per counterpart the user has ever
// exchanged a message with, newest conversation first. An empty message
// log yields an empty list, not an error. The scan is bounded by the
// configured read timeout; on expiry the request fails cleanly rather
// than returning a truncated list.
func (s *ConversationService) GetConversations(ctx context.Context, userEmail string) ([]*models.ConversationSummary, error) {
	if userEmail == "" {
		return nil, utils.NewValidationError("user identity must not be empty")
	}

	startTime := time.Now()
	if s.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.readTimeout)
		defer cancel()
	}

	messages, err := s.store.GetMessagesInvolving(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	// Fold into the latest message per counterpart. The tie-break is a
	// total order over (timestamp, id), so the result does not depend on
	// the order messages arrive from the store.
	best := make(map[string]*models.DirectMessage)
	unread := make(map[string]int64)
	for _, msg := range messages {
		counterpart := msg.Counterpart(userEmail)
		if current, ok := best[counterpart]; !ok || newerThan(msg, current) {
			best[counterpart] = msg
		}
		if msg.Sender == counterpart && msg.Receiver == userEmail && msg.ReadAt == nil {
			unread[counterpart]++
		}
	}

	summaries := make([]*models.ConversationSummary, 0, len(best))
	for counterpart, last := range best {
		name, err := s.members.ResolveDisplayName(ctx, counterpart)
		if err != nil {
			// Degrade to the identity itself; an unknown counterpart must
			// not fail the whole inbox.
			log.Printf("Display name lookup failed for %s: %v", counterpart, err)
			name = counterpart
		}
		summaries = append(summaries, &models.ConversationSummary{
			CounterpartEmail: counterpart,
			CounterpartName:  name,
			LastMessage:      last.Content,
			LastMessageAt:    last.SentAt,
			UnreadCount:      unread[counterpart],
			LastMessageID:    last.ID,
		})
	}

	// Newest conversation first; entries without a timestamp sort after
	// all timestamped ones. Ids break remaining ties so the order is
	// deterministic.
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessageAt, summaries[j].LastMessageAt
		switch {
		case a == nil && b == nil:
			return summaries[i].LastMessageID > summaries[j].LastMessageID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return summaries[i].LastMessageID > summaries[j].LastMessageID
		default:
			return a.After(*b)
		}
	})

	if s.metrics != nil {
		s.metrics.AddOperationLatency("get_conversations", time.Since(startTime))
	}
	return summaries, nil
}

// newerThan reports whether candidate supersedes current as the "last
// message" of a conversation: later timestamp wins, an absent timestamp
// loses to any present one, and the higher store id breaks the remaining
// ties. Commutative and associative, so fold order never matters.
func newerThan(candidate, current *models.DirectMessage) bool {
	ct, bt := candidate.SentAt, current.SentAt
	switch {
	case ct == nil && bt == nil:
		return candidate.ID > current.ID
	case ct == nil:
		return false
	case bt == nil:
		return true
	case ct.Equal(*bt):
		return candidate.ID > current.ID
	default:
		return ct.After(*bt)
	}
}
