package actors

import (
	stdctx "context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"
	"campus-connect/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
)

// fakeMessageStore keeps messages in memory
type fakeMessageStore struct {
	mu       sync.Mutex
	nextID   int64
	messages []*models.DirectMessage
	appendEr error
}

func (f *fakeMessageStore) AppendMessage(ctx stdctx.Context, msg *models.DirectMessage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendEr != nil {
		return 0, f.appendEr
	}
	f.nextID++
	msg.ID = f.nextID
	stored := *msg
	f.messages = append(f.messages, &stored)
	return msg.ID, nil
}

func (f *fakeMessageStore) GetMessagesInvolving(ctx stdctx.Context, email string) ([]*models.DirectMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DirectMessage
	for _, m := range f.messages {
		if m.Sender == email || m.Receiver == email {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) GetMessagesBetween(ctx stdctx.Context, a, b string) ([]*models.DirectMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DirectMessage
	for _, m := range f.messages {
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) MarkMessagesRead(ctx stdctx.Context, ids []int64, reader string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, m := range f.messages {
		for _, id := range ids {
			if m.ID == id && m.Receiver == reader && m.ReadAt == nil {
				m.ReadAt = &now
			}
		}
	}
	return nil
}

func spawnTestActor(t *testing.T, store MessageStore, hub *websocket.Hub) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewDirectMessageActor(store, hub)
	})
	return system, system.Root.Spawn(props)
}

func TestSendDirectMessage(t *testing.T) {
	store := &fakeMessageStore{}
	hub := websocket.NewHub(nil)
	system, pid := spawnTestActor(t, store, hub)

	// Receiver listens on the delivery bus
	sub := hub.Subscribe("receiver@test.com")
	defer sub.Close()

	future := system.Root.RequestFuture(pid, &SendDirectMessageMsg{
		Sender:   "sender@test.com",
		Receiver: "receiver@test.com",
		Content:  "hello there",
	}, 5*time.Second)

	result, err := future.Result()
	if err != nil {
		t.Fatalf("Send request failed: %v", err)
	}

	sent, ok := result.(*models.DirectMessage)
	if !ok {
		t.Fatalf("unexpected response type %T", result)
	}
	assert.Equal(t, int64(1), sent.ID)
	assert.Equal(t, "sender@test.com", sent.Sender)
	assert.NotNil(t, sent.SentAt)

	// The receiver gets a live push of the same message
	select {
	case payload := <-sub.C():
		var push struct {
			Type    string                `json:"type"`
			Message *models.DirectMessage `json:"message"`
		}
		if err := json.Unmarshal(payload, &push); err != nil {
			t.Fatalf("failed to decode push: %v", err)
		}
		assert.Equal(t, "message", push.Type)
		assert.Equal(t, sent.ID, push.Message.ID)
		assert.Equal(t, "hello there", push.Message.Content)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for live push")
	}
}

func TestSendDirectMessageValidation(t *testing.T) {
	store := &fakeMessageStore{}
	system, pid := spawnTestActor(t, store, websocket.NewHub(nil))

	future := system.Root.RequestFuture(pid, &SendDirectMessageMsg{
		Sender:  "",
		Content: "no receiver",
	}, 5*time.Second)

	result, err := future.Result()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
	assert.Empty(t, store.messages)
}

func TestSendDirectMessageStoreFailure(t *testing.T) {
	store := &fakeMessageStore{appendEr: assert.AnError}
	system, pid := spawnTestActor(t, store, websocket.NewHub(nil))

	future := system.Root.RequestFuture(pid, &SendDirectMessageMsg{
		Sender:   "sender@test.com",
		Receiver: "receiver@test.com",
		Content:  "doomed",
	}, 5*time.Second)

	result, err := future.Result()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrStoreFailure, appErr.Code)
}

func TestGetUserMessages(t *testing.T) {
	store := &fakeMessageStore{}
	system, pid := spawnTestActor(t, store, websocket.NewHub(nil))

	sendMessages := []*SendDirectMessageMsg{
		{Sender: "a@test.com", Receiver: "b@test.com", Content: "one"},
		{Sender: "b@test.com", Receiver: "a@test.com", Content: "two"},
		{Sender: "c@test.com", Receiver: "d@test.com", Content: "unrelated"},
	}
	for _, msg := range sendMessages {
		future := system.Root.RequestFuture(pid, msg, 5*time.Second)
		if _, err := future.Result(); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	future := system.Root.RequestFuture(pid, &GetUserMessagesMsg{UserEmail: "a@test.com"}, 5*time.Second)
	result, err := future.Result()
	if err != nil {
		t.Fatalf("get messages failed: %v", err)
	}

	messages, ok := result.([]*models.DirectMessage)
	if !ok {
		t.Fatalf("unexpected response type %T", result)
	}
	assert.Len(t, messages, 2)
}

func TestGetMessageHistory(t *testing.T) {
	store := &fakeMessageStore{}
	system, pid := spawnTestActor(t, store, websocket.NewHub(nil))

	sendMessages := []*SendDirectMessageMsg{
		{Sender: "a@test.com", Receiver: "b@test.com", Content: "one"},
		{Sender: "b@test.com", Receiver: "a@test.com", Content: "two"},
		{Sender: "a@test.com", Receiver: "c@test.com", Content: "other thread"},
	}
	for _, msg := range sendMessages {
		future := system.Root.RequestFuture(pid, msg, 5*time.Second)
		if _, err := future.Result(); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	future := system.Root.RequestFuture(pid, &GetMessageHistoryMsg{
		UserEmail:  "a@test.com",
		OtherEmail: "b@test.com",
	}, 5*time.Second)
	result, err := future.Result()
	if err != nil {
		t.Fatalf("get history failed: %v", err)
	}

	messages, ok := result.([]*models.DirectMessage)
	if !ok {
		t.Fatalf("unexpected response type %T", result)
	}
	assert.Len(t, messages, 2)
}

func TestMarkMessagesRead(t *testing.T) {
	store := &fakeMessageStore{}
	system, pid := spawnTestActor(t, store, websocket.NewHub(nil))

	sendFuture := system.Root.RequestFuture(pid, &SendDirectMessageMsg{
		Sender:   "a@test.com",
		Receiver: "b@test.com",
		Content:  "read me",
	}, 5*time.Second)
	sendResult, err := sendFuture.Result()
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	sent := sendResult.(*models.DirectMessage)

	markFuture := system.Root.RequestFuture(pid, &MarkMessagesReadMsg{
		MessageIDs: []int64{sent.ID},
		Reader:     "b@test.com",
	}, 5*time.Second)
	markResult, err := markFuture.Result()
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	assert.Equal(t, true, markResult)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotNil(t, store.messages[0].ReadAt)
}

func TestMarkMessagesReadRequiresReader(t *testing.T) {
	system, pid := spawnTestActor(t, &fakeMessageStore{}, websocket.NewHub(nil))

	future := system.Root.RequestFuture(pid, &MarkMessagesReadMsg{
		MessageIDs: []int64{1},
	}, 5*time.Second)
	result, err := future.Result()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}
