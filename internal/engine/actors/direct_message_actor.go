package actors

import (
	stdctx "context"
	"encoding/json"
	"log"
	"time"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"
	"campus-connect/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Message types for DirectMessageActor
type (
	SendDirectMessageMsg struct {
		Sender    string     `json:"sender"`
		Receiver  string     `json:"receiver"`
		Content   string     `json:"content"`
		ImagePath string     `json:"imagePath,omitempty"`
		SentAt    *time.Time `json:"sentAt,omitempty"`
	}

	GetUserMessagesMsg struct {
		UserEmail string `json:"userEmail"`
	}

	GetMessageHistoryMsg struct {
		UserEmail  string `json:"userEmail"`
		OtherEmail string `json:"otherEmail"`
	}

	MarkMessagesReadMsg struct {
		MessageIDs []int64 `json:"messageIds"`
		Reader     string  `json:"reader"` // The user marking the messages as read
	}
)

// MessageStore is the slice of the database adapter the actor writes to.
type MessageStore interface {
	AppendMessage(ctx stdctx.Context, msg *models.DirectMessage) (int64, error)
	GetMessagesInvolving(ctx stdctx.Context, email string) ([]*models.DirectMessage, error)
	GetMessagesBetween(ctx stdctx.Context, a, b string) ([]*models.DirectMessage, error)
	MarkMessagesRead(ctx stdctx.Context, ids []int64, reader string) error
}

// messagePush is the envelope published to the receiver's delivery
// channel when a new message lands.
type messagePush struct {
	Type    string                `json:"type"`
	Message *models.DirectMessage `json:"message"`
}

// DirectMessageActor owns the append path of the message log: it appends
// to the store, then pushes the message to the receiver's delivery
// channel. The store write is durable; the push is best effort.
type DirectMessageActor struct {
	store MessageStore
	hub   *websocket.Hub
}

func NewDirectMessageActor(store MessageStore, hub *websocket.Hub) actor.Actor {
	return &DirectMessageActor{
		store: store,
		hub:   hub,
	}
}

func (a *DirectMessageActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("DirectMessageActor started with PID: %v", context.Self())
	case *SendDirectMessageMsg:
		a.handleSendMessage(context, msg)
	case *GetUserMessagesMsg:
		a.handleGetUserMessages(context, msg)
	case *GetMessageHistoryMsg:
		a.handleGetMessageHistory(context, msg)
	case *MarkMessagesReadMsg:
		a.handleMarkMessagesRead(context, msg)
	}
}

func (a *DirectMessageActor) handleSendMessage(context actor.Context, msg *SendDirectMessageMsg) {
	if msg.Sender == "" || msg.Receiver == "" {
		context.Respond(utils.NewValidationError("sender and receiver are required"))
		return
	}

	sentAt := msg.SentAt
	if sentAt == nil {
		now := time.Now()
		sentAt = &now
	}
	newMessage := &models.DirectMessage{
		Sender:    msg.Sender,
		Receiver:  msg.Receiver,
		Content:   msg.Content,
		ImagePath: msg.ImagePath,
		SentAt:    sentAt,
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
	defer cancel()

	if _, err := a.store.AppendMessage(ctx, newMessage); err != nil {
		log.Printf("Failed to append message from %s to %s: %v", msg.Sender, msg.Receiver, err)
		context.Respond(utils.NewStoreError("failed to send message", err))
		return
	}

	// Best-effort live push to the receiver. A missed push is invisible:
	// the message is already durable and shows up on the next poll.
	if payload, err := json.Marshal(&messagePush{Type: "message", Message: newMessage}); err == nil {
		a.hub.Publish(msg.Receiver, payload)
	} else {
		log.Printf("Failed to encode message push for %s: %v", msg.Receiver, err)
	}

	log.Printf("New message %d sent from %s to %s", newMessage.ID, msg.Sender, msg.Receiver)
	context.Respond(newMessage)
}

func (a *DirectMessageActor) handleGetUserMessages(context actor.Context, msg *GetUserMessagesMsg) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
	defer cancel()

	messages, err := a.store.GetMessagesInvolving(ctx, msg.UserEmail)
	if err != nil {
		context.Respond(utils.NewStoreError("failed to get messages", err))
		return
	}
	context.Respond(messages)
}

func (a *DirectMessageActor) handleGetMessageHistory(context actor.Context, msg *GetMessageHistoryMsg) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
	defer cancel()

	messages, err := a.store.GetMessagesBetween(ctx, msg.UserEmail, msg.OtherEmail)
	if err != nil {
		context.Respond(utils.NewStoreError("failed to get message history", err))
		return
	}
	context.Respond(messages)
}

func (a *DirectMessageActor) handleMarkMessagesRead(context actor.Context, msg *MarkMessagesReadMsg) {
	if msg.Reader == "" {
		context.Respond(utils.NewValidationError("reader is required"))
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
	defer cancel()

	if err := a.store.MarkMessagesRead(ctx, msg.MessageIDs, msg.Reader); err != nil {
		context.Respond(utils.NewStoreError("failed to mark messages read", err))
		return
	}
	context.Respond(true)
}
