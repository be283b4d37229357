// Package notifications creates, deduplicates, and delivers activity
// notifications. The ledger write is the durable source of truth; the
// live push is a best-effort hint for connected clients.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"
)

const postPreviewRunes = 50

// Ledger is the durable notification store.
type Ledger interface {
	InsertLikeNotificationIfAbsent(ctx context.Context, n *models.Notification) (bool, error)
	InsertCommentNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipient string, unreadOnly bool) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (string, error)
	MarkAllNotificationsRead(ctx context.Context, recipient string) error
	CountUnreadNotifications(ctx context.Context, recipient string) (int64, error)
}

// PostDirectory resolves a post's owner and content.
type PostDirectory interface {
	GetPost(ctx context.Context, postID int64) (*models.Post, error)
}

// MemberDirectory resolves display names for the pushed projection.
type MemberDirectory interface {
	ResolveDisplayName(ctx context.Context, email string) (string, error)
}

// Publisher is the delivery bus. Publish is fire-and-forget.
type Publisher interface {
	Publish(recipient string, payload []byte)
}

// Pushed payload envelopes. One channel per recipient carries both the
// notification projections and the unread-count updates; clients switch
// on the type field.
type pushEnvelope struct {
	Type         string                   `json:"type"`
	Notification *models.NotificationView `json:"notification,omitempty"`
	UnreadCount  *int64                   `json:"unreadCount,omitempty"`
}

// Orchestrator is the only component that talks to both the ledger and
// the delivery bus. It holds no mutable state; the dedup invariant lives
// in the ledger's insert-or-ignore semantics, so concurrent calls for
// unrelated posts never contend.
type Orchestrator struct {
	ledger  Ledger
	posts   PostDirectory
	members MemberDirectory
	bus     Publisher
	metrics *utils.MetricsCollector
}

func NewOrchestrator(ledger Ledger, posts PostDirectory, members MemberDirectory, bus Publisher, metrics *utils.MetricsCollector) *Orchestrator {
	return &Orchestrator{
		ledger:  ledger,
		posts:   posts,
		members: members,
		bus:     bus,
		metrics: metrics,
	}
}

// NotifyLike records an unread LIKE notification for the post's owner,
// unless the actor already has one pending for this post or is the owner
// themselves. At most one unread LIKE notification ever exists per
// (post, actor): the ledger insert is atomic with respect to concurrent
// likers.
func (o *Orchestrator) NotifyLike(ctx context.Context, postID int64, actorEmail string) error {
	startTime := time.Now()
	post, err := o.resolvePost(ctx, postID, actorEmail)
	if err != nil || post == nil {
		return err
	}

	n := &models.Notification{
		PostID:         postID,
		Kind:           models.NotificationLike,
		ActorEmail:     actorEmail,
		RecipientEmail: post.AuthorEmail,
	}
	inserted, err := o.ledger.InsertLikeNotificationIfAbsent(ctx, n)
	if err != nil {
		return err
	}
	if inserted {
		o.pushNotification(ctx, n, post)
		o.pushUnreadCount(ctx, n.RecipientEmail)
	}

	if o.metrics != nil {
		o.metrics.AddOperationLatency("notify_like", time.Since(startTime))
	}
	return nil
}

// NotifyComment records a COMMENT notification for the post's owner.
// Every comment yields a fresh notification; there is no dedup.
func (o *Orchestrator) NotifyComment(ctx context.Context, postID int64, actorEmail string) error {
	startTime := time.Now()
	post, err := o.resolvePost(ctx, postID, actorEmail)
	if err != nil || post == nil {
		return err
	}

	n := &models.Notification{
		PostID:         postID,
		Kind:           models.NotificationComment,
		ActorEmail:     actorEmail,
		RecipientEmail: post.AuthorEmail,
	}
	if err := o.ledger.InsertCommentNotification(ctx, n); err != nil {
		return err
	}
	o.pushNotification(ctx, n, post)
	o.pushUnreadCount(ctx, n.RecipientEmail)

	if o.metrics != nil {
		o.metrics.AddOperationLatency("notify_comment", time.Since(startTime))
	}
	return nil
}

// resolvePost validates the arguments and loads the post. A nil post
// with nil error signals self-action: the actor owns the post, so the
// call succeeds with no side effect.
func (o *Orchestrator) resolvePost(ctx context.Context, postID int64, actorEmail string) (*models.Post, error) {
	if actorEmail == "" {
		return nil, utils.NewValidationError("actor identity must not be empty")
	}
	if postID <= 0 {
		return nil, utils.NewValidationError("post id must be positive")
	}

	post, err := o.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorEmail == actorEmail {
		// Self-action is silent, not an error.
		return nil, nil
	}
	return post, nil
}

// MarkRead flips one notification to read, then pushes a fresh unread
// count to its recipient.
func (o *Orchestrator) MarkRead(ctx context.Context, notificationID int64) error {
	recipient, err := o.ledger.MarkNotificationRead(ctx, notificationID)
	if err != nil {
		return err
	}
	o.pushUnreadCount(ctx, recipient)
	return nil
}

// MarkAllRead flips every unread notification for the recipient, then
// pushes the (now zero) unread count.
func (o *Orchestrator) MarkAllRead(ctx context.Context, recipientEmail string) error {
	if recipientEmail == "" {
		return utils.NewValidationError("recipient identity must not be empty")
	}
	if err := o.ledger.MarkAllNotificationsRead(ctx, recipientEmail); err != nil {
		return err
	}
	o.pushUnreadCount(ctx, recipientEmail)
	return nil
}

// ListUnread returns the recipient's unread notifications, newest first,
// with actor names and post previews resolved.
func (o *Orchestrator) ListUnread(ctx context.Context, recipientEmail string) ([]*models.NotificationView, error) {
	return o.list(ctx, recipientEmail, true)
}

// ListAll returns all of the recipient's notifications, newest first.
func (o *Orchestrator) ListAll(ctx context.Context, recipientEmail string) ([]*models.NotificationView, error) {
	return o.list(ctx, recipientEmail, false)
}

func (o *Orchestrator) list(ctx context.Context, recipientEmail string, unreadOnly bool) ([]*models.NotificationView, error) {
	if recipientEmail == "" {
		return nil, utils.NewValidationError("recipient identity must not be empty")
	}
	rows, err := o.ledger.ListNotifications(ctx, recipientEmail, unreadOnly)
	if err != nil {
		return nil, err
	}

	views := make([]*models.NotificationView, 0, len(rows))
	for _, n := range rows {
		var post *models.Post
		if p, err := o.posts.GetPost(ctx, n.PostID); err == nil {
			post = p
		} else {
			log.Printf("Post lookup failed for notification %d: %v", n.ID, err)
		}
		views = append(views, o.project(ctx, n, post))
	}
	return views, nil
}

// project builds the client-facing view of a notification: actor display
// name (falling back to the email) and a short post preview.
func (o *Orchestrator) project(ctx context.Context, n *models.Notification, post *models.Post) *models.NotificationView {
	actorName, err := o.members.ResolveDisplayName(ctx, n.ActorEmail)
	if err != nil {
		log.Printf("Display name lookup failed for %s: %v", n.ActorEmail, err)
		actorName = n.ActorEmail
	}
	view := &models.NotificationView{
		Notification: *n,
		ActorName:    actorName,
	}
	if post != nil {
		view.PostPreview = previewOf(post.Content)
	}
	return view
}

// pushNotification publishes the freshly inserted notification to its
// recipient's delivery channel. Best effort: the ledger write already
// succeeded, so nothing here may fail the call.
func (o *Orchestrator) pushNotification(ctx context.Context, n *models.Notification, post *models.Post) {
	view := o.project(ctx, n, post)
	payload, err := json.Marshal(&pushEnvelope{Type: "notification", Notification: view})
	if err != nil {
		log.Printf("Failed to encode notification push for %s: %v", n.RecipientEmail, err)
		return
	}
	o.bus.Publish(n.RecipientEmail, payload)
}

// pushUnreadCount publishes the recipient's current unread count.
// Best effort; clients treat the count as a hint and reconcile via
// ListUnread.
func (o *Orchestrator) pushUnreadCount(ctx context.Context, recipientEmail string) {
	count, err := o.ledger.CountUnreadNotifications(ctx, recipientEmail)
	if err != nil {
		log.Printf("Unread count lookup failed for %s: %v", recipientEmail, err)
		return
	}
	payload, err := json.Marshal(&pushEnvelope{Type: "unreadCount", UnreadCount: &count})
	if err != nil {
		log.Printf("Failed to encode unread count push for %s: %v", recipientEmail, err)
		return
	}
	o.bus.Publish(recipientEmail, payload)
}

// previewOf truncates post content for the pushed projection.
func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= postPreviewRunes {
		return content
	}
	return string(runes[:postPreviewRunes]) + "..."
}
