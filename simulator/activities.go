package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"campus-connect/internal/models"
)

type ErrorResponse struct {
	Code    string  `json:"Code"`
	Message string  `json:"Message"`
	Origin  *string `json:"Origin"`
}

func (s *Simulator) SimulateActivities(ctx context.Context) error {
	log.Printf("Starting activities simulation...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateMessages(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateLikes(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateComments(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateReads(ctx)
	}()

	wg.Wait()
	return nil
}

func (s *Simulator) simulateMessages(ctx context.Context) {
	log.Printf("Starting message simulation...")

	tickInterval := 500 * time.Millisecond
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rand.Float64() >= s.config.MessageFrequency {
				continue
			}

			sender := s.randomUser()
			receiver := s.randomUser()
			if sender == nil || receiver == nil || sender.Email == receiver.Email {
				continue
			}

			data := map[string]interface{}{
				"sender":   sender.Email,
				"receiver": receiver.Email,
				"content": fmt.Sprintf("Hi from %s at %s", sender.Name,
					time.Now().Format(time.RFC3339)),
			}

			resp, err := s.makeRequest("POST", "/messages", data, sender.Token)
			if err != nil {
				log.Printf("Debug: Failed to send message: %v", err)
				continue
			}

			var msg models.DirectMessage
			if err := json.Unmarshal(resp, &msg); err != nil {
				log.Printf("Debug: Error parsing message response: %v", err)
				continue
			}

			s.stats.mu.Lock()
			s.stats.TotalMessages++
			messageCount := s.stats.TotalMessages
			s.stats.mu.Unlock()
			log.Printf("Sent message %d from %s to %s (Total: %d)",
				msg.ID, sender.Email, receiver.Email, messageCount)

			// The receiver catches up via the conversation list,
			// then acknowledges the message.
			s.catchUpConversations(receiver, msg.ID)
		}
	}
}

// catchUpConversations fetches the receiver's conversation list and
// marks the delivered message read, the way a client would.
func (s *Simulator) catchUpConversations(receiver *SimulatedUser, messageID int64) {
	resp, err := s.makeRequest("GET",
		fmt.Sprintf("/messages/conversations?userId=%s", receiver.Email), nil, receiver.Token)
	if err != nil {
		log.Printf("Debug: Failed to fetch conversations for %s: %v", receiver.Email, err)
		return
	}

	var conversations []models.ConversationSummary
	if err := json.Unmarshal(resp, &conversations); err != nil {
		log.Printf("Debug: Error parsing conversations: %v", err)
		return
	}
	log.Printf("Debug: %s has %d conversations", receiver.Email, len(conversations))

	if rand.Float64() < s.config.ReadRate {
		data := map[string]interface{}{
			"messageIds": []int64{messageID},
			"reader":     receiver.Email,
		}
		if _, err := s.makeRequest("POST", "/messages/read", data, receiver.Token); err != nil {
			log.Printf("Debug: Failed to mark message %d read: %v", messageID, err)
		}
	}
}

func (s *Simulator) simulateLikes(ctx context.Context) {
	log.Printf("Starting like simulation...")

	tickInterval := 500 * time.Millisecond
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rand.Float64() >= s.config.LikeFrequency {
				continue
			}

			actor := s.randomUser()
			if actor == nil {
				continue
			}
			postID, ok := s.randomPost()
			if !ok {
				continue
			}

			s.mu.RLock()
			alreadyLiked := actor.LikedPosts[postID]
			s.mu.RUnlock()
			if alreadyLiked {
				continue
			}

			data := map[string]interface{}{
				"postId":     postID,
				"actorEmail": actor.Email,
			}

			if _, err := s.makeRequest("POST", "/posts/like", data, actor.Token); err != nil {
				log.Printf("Debug: Failed to like post %d: %v", postID, err)
				continue
			}

			s.mu.Lock()
			actor.LikedPosts[postID] = true
			s.mu.Unlock()

			s.stats.mu.Lock()
			s.stats.TotalLikes++
			likeCount := s.stats.TotalLikes
			s.stats.mu.Unlock()
			log.Printf("Liked post %d by %s (Total: %d)", postID, actor.Email, likeCount)
		}
	}
}

func (s *Simulator) simulateComments(ctx context.Context) {
	log.Printf("Starting comment simulation...")

	tickInterval := 500 * time.Millisecond
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rand.Float64() >= s.config.CommentFrequency {
				continue
			}

			actor := s.randomUser()
			if actor == nil {
				continue
			}
			postID, ok := s.randomPost()
			if !ok {
				continue
			}

			data := map[string]interface{}{
				"postId":      postID,
				"authorEmail": actor.Email,
				"content": fmt.Sprintf("Comment from %s at %s", actor.Name,
					time.Now().Format(time.RFC3339)),
			}

			if _, err := s.makeRequest("POST", "/comments", data, actor.Token); err != nil {
				log.Printf("Debug: Failed to comment on post %d: %v", postID, err)
				continue
			}

			s.stats.mu.Lock()
			s.stats.TotalComments++
			commentCount := s.stats.TotalComments
			s.stats.mu.Unlock()
			log.Printf("Commented on post %d by %s (Total: %d)", postID, actor.Email, commentCount)
		}
	}
}

// simulateReads polls notification lists and occasionally clears them,
// the way a client opening the notification tray would.
func (s *Simulator) simulateReads(ctx context.Context) {
	log.Printf("Starting notification read simulation...")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			user := s.randomUser()
			if user == nil {
				continue
			}

			resp, err := s.makeRequest("GET",
				fmt.Sprintf("/notifications/unread?recipient=%s", user.Email), nil, user.Token)
			if err != nil {
				log.Printf("Debug: Failed to fetch notifications for %s: %v", user.Email, err)
				continue
			}

			var notifications []models.NotificationView
			if err := json.Unmarshal(resp, &notifications); err != nil {
				log.Printf("Debug: Error parsing notifications: %v", err)
				continue
			}
			if len(notifications) == 0 {
				continue
			}

			if rand.Float64() < s.config.ReadRate {
				// Clear the whole tray
				data := map[string]interface{}{"recipient": user.Email}
				if _, err := s.makeRequest("POST", "/notifications/read-all", data, user.Token); err != nil {
					log.Printf("Debug: Failed to mark all read for %s: %v", user.Email, err)
					continue
				}
				s.stats.mu.Lock()
				s.stats.TotalReads += len(notifications)
				s.stats.mu.Unlock()
				log.Printf("Marked %d notifications read for %s", len(notifications), user.Email)
			} else {
				// Acknowledge just the newest one
				data := map[string]interface{}{"id": notifications[0].ID}
				if _, err := s.makeRequest("POST", "/notifications/read", data, user.Token); err != nil {
					log.Printf("Debug: Failed to mark notification read: %v", err)
					continue
				}
				s.stats.mu.Lock()
				s.stats.TotalReads++
				s.stats.mu.Unlock()
			}
		}
	}
}
