package messaging

import (
	"context"
	"fmt"
	"testing"
	"time"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"

	"github.com/stretchr/testify/assert"
)

// fakeMessageStore serves a fixed message slice
type fakeMessageStore struct {
	messages []*models.DirectMessage
	err      error
}

func (f *fakeMessageStore) GetMessagesInvolving(ctx context.Context, email string) ([]*models.DirectMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

// fakeDirectory resolves names from a map and fails for unknown emails
type fakeDirectory struct {
	names map[string]string
}

func (f *fakeDirectory) ResolveDisplayName(ctx context.Context, email string) (string, error) {
	if name, ok := f.names[email]; ok {
		return name, nil
	}
	return "", utils.NewMemberNotFoundError(email)
}

func ts(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", s, err)
	}
	return &parsed
}

func newTestService(store *fakeMessageStore, dir *fakeDirectory) *ConversationService {
	return NewConversationService(store, dir, nil, 2*time.Second)
}

func TestGetConversationsGroupsByCounterpart(t *testing.T) {
	store := &fakeMessageStore{
		messages: []*models.DirectMessage{
			{ID: 1, Sender: "a@test.com", Receiver: "b@test.com", Content: "first", SentAt: ts(t, "2026-01-01T10:00:00Z")},
			{ID: 2, Sender: "b@test.com", Receiver: "a@test.com", Content: "second", SentAt: ts(t, "2026-01-01T11:00:00Z")},
			{ID: 3, Sender: "a@test.com", Receiver: "c@test.com", Content: "third", SentAt: ts(t, "2026-01-01T12:00:00Z")},
		},
	}
	dir := &fakeDirectory{names: map[string]string{
		"b@test.com": "Bee",
		"c@test.com": "Cee",
	}}
	svc := newTestService(store, dir)

	summaries, err := svc.GetConversations(context.Background(), "a@test.com")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}

	// One entry per counterpart, newest conversation first
	assert.Len(t, summaries, 2)
	assert.Equal(t, "c@test.com", summaries[0].CounterpartEmail)
	assert.Equal(t, "Cee", summaries[0].CounterpartName)
	assert.Equal(t, "third", summaries[0].LastMessage)
	assert.Equal(t, "b@test.com", summaries[1].CounterpartEmail)
	assert.Equal(t, "second", summaries[1].LastMessage)
}

func TestGetConversationsFoldOrderIndependent(t *testing.T) {
	forward := []*models.DirectMessage{
		{ID: 1, Sender: "a@test.com", Receiver: "b@test.com", Content: "older", SentAt: ts(t, "2026-01-01T10:00:00Z")},
		{ID: 2, Sender: "b@test.com", Receiver: "a@test.com", Content: "newer", SentAt: ts(t, "2026-01-01T11:00:00Z")},
		{ID: 3, Sender: "a@test.com", Receiver: "b@test.com", Content: "no timestamp"},
	}
	reversed := []*models.DirectMessage{forward[2], forward[1], forward[0]}
	dir := &fakeDirectory{names: map[string]string{"b@test.com": "Bee"}}

	for i, messages := range [][]*models.DirectMessage{forward, reversed} {
		svc := newTestService(&fakeMessageStore{messages: messages}, dir)
		summaries, err := svc.GetConversations(context.Background(), "a@test.com")
		if err != nil {
			t.Fatalf("GetConversations failed for order %d: %v", i, err)
		}
		assert.Len(t, summaries, 1, "order %d", i)
		assert.Equal(t, "newer", summaries[0].LastMessage, "order %d", i)
	}
}

func TestGetConversationsEqualTimestampTieBreak(t *testing.T) {
	// Equal timestamps resolve by id, whichever way the store hands
	// them over
	when := ts(t, "2026-01-01T10:00:00Z")
	forward := []*models.DirectMessage{
		{ID: 1, Sender: "a@test.com", Receiver: "b@test.com", Content: "lower id", SentAt: when},
		{ID: 2, Sender: "b@test.com", Receiver: "a@test.com", Content: "higher id", SentAt: when},
	}
	reversed := []*models.DirectMessage{forward[1], forward[0]}
	dir := &fakeDirectory{names: map[string]string{"b@test.com": "Bee"}}

	for i, messages := range [][]*models.DirectMessage{forward, reversed} {
		svc := newTestService(&fakeMessageStore{messages: messages}, dir)
		summaries, err := svc.GetConversations(context.Background(), "a@test.com")
		if err != nil {
			t.Fatalf("GetConversations failed for order %d: %v", i, err)
		}
		assert.Len(t, summaries, 1, "order %d", i)
		assert.Equal(t, "higher id", summaries[0].LastMessage, "order %d", i)
	}
}

func TestGetConversationsNullTimestampTieBreak(t *testing.T) {
	// Neither message carries a timestamp; the higher id wins
	store := &fakeMessageStore{
		messages: []*models.DirectMessage{
			{ID: 5, Sender: "a@test.com", Receiver: "b@test.com", Content: "earlier write"},
			{ID: 9, Sender: "b@test.com", Receiver: "a@test.com", Content: "later write"},
		},
	}
	dir := &fakeDirectory{names: map[string]string{"b@test.com": "Bee"}}
	svc := newTestService(store, dir)

	summaries, err := svc.GetConversations(context.Background(), "a@test.com")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	assert.Len(t, summaries, 1)
	assert.Equal(t, "later write", summaries[0].LastMessage)
	assert.Nil(t, summaries[0].LastMessageAt)
}

func TestGetConversationsTimestampedBeatsUntimestamped(t *testing.T) {
	store := &fakeMessageStore{
		messages: []*models.DirectMessage{
			{ID: 10, Sender: "a@test.com", Receiver: "b@test.com", Content: "no timestamp"},
			{ID: 2, Sender: "b@test.com", Receiver: "a@test.com", Content: "timestamped", SentAt: ts(t, "2026-01-01T09:00:00Z")},
		},
	}
	dir := &fakeDirectory{names: map[string]string{"b@test.com": "Bee"}}
	svc := newTestService(store, dir)

	summaries, err := svc.GetConversations(context.Background(), "a@test.com")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	assert.Len(t, summaries, 1)
	assert.Equal(t, "timestamped", summaries[0].LastMessage)
}

func TestGetConversationsSortsUntimestampedLast(t *testing.T) {
	store := &fakeMessageStore{
		messages: []*models.DirectMessage{
			{ID: 1, Sender: "a@test.com", Receiver: "b@test.com", Content: "with ts", SentAt: ts(t, "2026-01-01T10:00:00Z")},
			{ID: 2, Sender: "a@test.com", Receiver: "c@test.com", Content: "without ts"},
		},
	}
	dir := &fakeDirectory{names: map[string]string{"b@test.com": "Bee", "c@test.com": "Cee"}}
	svc := newTestService(store, dir)

	summaries, err := svc.GetConversations(context.Background(), "a@test.com")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	assert.Len(t, summaries, 2)
	assert.Equal(t, "b@test.com", summaries[0].CounterpartEmail)
	assert.Equal(t, "c@test.com", summaries[1].CounterpartEmail)
}

func TestGetConversationsNameFallsBackToEmail(t *testing.T) {
	store := &fakeMessageStore{
		messages: []*models.DirectMessage{
			{ID: 1, Sender: "ghost@test.com", Receiver: "a@test.com", Content: "boo", SentAt: ts(t, "2026-01-01T10:00:00Z")},
		},
	}
	svc := newTestService(store, &fakeDirectory{names: map[string]string{}})

	summaries, err := svc.GetConversations(context.Background(), "a@test.com")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	assert.Len(t, summaries, 1)
	assert.Equal(t, "ghost@test.com", summaries[0].CounterpartName)
}

func TestGetConversationsCountsUnread(t *testing.T) {
	readAt := ts(t, "2026-01-02T08:00:00Z")
	store := &fakeMessageStore{
		messages: []*models.DirectMessage{
			// Two unread from b, one already read, one sent by a
			{ID: 1, Sender: "b@test.com", Receiver: "a@test.com", Content: "m1", SentAt: ts(t, "2026-01-01T10:00:00Z")},
			{ID: 2, Sender: "b@test.com", Receiver: "a@test.com", Content: "m2", SentAt: ts(t, "2026-01-01T11:00:00Z")},
			{ID: 3, Sender: "b@test.com", Receiver: "a@test.com", Content: "m3", SentAt: ts(t, "2026-01-01T09:00:00Z"), ReadAt: readAt},
			{ID: 4, Sender: "a@test.com", Receiver: "b@test.com", Content: "m4", SentAt: ts(t, "2026-01-01T08:00:00Z")},
		},
	}
	dir := &fakeDirectory{names: map[string]string{"b@test.com": "Bee"}}
	svc := newTestService(store, dir)

	summaries, err := svc.GetConversations(context.Background(), "a@test.com")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	assert.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)
}

func TestGetConversationsEmptyLog(t *testing.T) {
	svc := newTestService(&fakeMessageStore{}, &fakeDirectory{})

	summaries, err := svc.GetConversations(context.Background(), "a@test.com")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	assert.Empty(t, summaries)
	assert.NotNil(t, summaries)
}

func TestGetConversationsRejectsEmptyIdentity(t *testing.T) {
	svc := newTestService(&fakeMessageStore{}, &fakeDirectory{})

	_, err := svc.GetConversations(context.Background(), "")
	if err == nil {
		t.Fatal("expected validation error for empty identity")
	}
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

func TestGetConversationsPropagatesStoreError(t *testing.T) {
	store := &fakeMessageStore{err: fmt.Errorf("connection refused")}
	svc := newTestService(store, &fakeDirectory{})

	_, err := svc.GetConversations(context.Background(), "a@test.com")
	assert.Error(t, err)
}

func TestNewerThanIsTotalOrder(t *testing.T) {
	t1 := ts(t, "2026-01-01T10:00:00Z")
	t2 := ts(t, "2026-01-01T11:00:00Z")

	cases := []struct {
		name      string
		candidate *models.DirectMessage
		current   *models.DirectMessage
		want      bool
	}{
		{"later timestamp wins", &models.DirectMessage{ID: 1, SentAt: t2}, &models.DirectMessage{ID: 2, SentAt: t1}, true},
		{"earlier timestamp loses", &models.DirectMessage{ID: 2, SentAt: t1}, &models.DirectMessage{ID: 1, SentAt: t2}, false},
		{"nil loses to present", &models.DirectMessage{ID: 9}, &models.DirectMessage{ID: 1, SentAt: t1}, false},
		{"present beats nil", &models.DirectMessage{ID: 1, SentAt: t1}, &models.DirectMessage{ID: 9}, true},
		{"both nil higher id wins", &models.DirectMessage{ID: 9}, &models.DirectMessage{ID: 5}, true},
		{"equal timestamps higher id wins", &models.DirectMessage{ID: 9, SentAt: t1}, &models.DirectMessage{ID: 5, SentAt: t1}, true},
		{"equal timestamps lower id loses", &models.DirectMessage{ID: 5, SentAt: t1}, &models.DirectMessage{ID: 9, SentAt: t1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, newerThan(tc.candidate, tc.current))
		})
	}
}
