package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"campus-connect/internal/engine/actors"
)

// SendMessageRequest represents a request to send a direct message
type SendMessageRequest struct {
	Sender    string     `json:"sender"`
	Receiver  string     `json:"receiver"`
	Content   string     `json:"content"`
	ImagePath string     `json:"imagePath,omitempty"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}

// HandleDirectMessages handles sending and retrieving direct messages
func (s *Server) HandleDirectMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		switch r.Method {
		case http.MethodPost:
			// Send a direct message
			var req SendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			if req.Sender == "" || req.Receiver == "" {
				http.Error(w, "Sender and receiver are required", http.StatusBadRequest)
				return
			}

			msg := &actors.SendDirectMessageMsg{
				Sender:    req.Sender,
				Receiver:  req.Receiver,
				Content:   req.Content,
				ImagePath: req.ImagePath,
				SentAt:    req.SentAt,
			}

			future := s.Context.RequestFuture(s.DirectMessageActor, msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to send message", http.StatusInternalServerError)
				return
			}
			s.respondActorResult(w, result)

		case http.MethodGet:
			// Get all messages involving a user
			userEmail := r.URL.Query().Get("userId")
			if userEmail == "" {
				http.Error(w, "User identity required", http.StatusBadRequest)
				return
			}

			msg := &actors.GetUserMessagesMsg{UserEmail: userEmail}
			future := s.Context.RequestFuture(s.DirectMessageActor, msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to get messages", http.StatusInternalServerError)
				return
			}
			s.respondActorResult(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleMessageHistory gets the messages between two specific users
func (s *Server) HandleMessageHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userEmail := r.URL.Query().Get("userId")
		otherEmail := r.URL.Query().Get("otherId")
		if userEmail == "" || otherEmail == "" {
			http.Error(w, "Both user identities required", http.StatusBadRequest)
			return
		}

		msg := &actors.GetMessageHistoryMsg{
			UserEmail:  userEmail,
			OtherEmail: otherEmail,
		}

		future := s.Context.RequestFuture(s.DirectMessageActor, msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to get message history", http.StatusInternalServerError)
			return
		}
		s.respondActorResult(w, result)
	}
}

// HandleMarkMessagesRead marks messages as read for their receiver
func (s *Server) HandleMarkMessagesRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			MessageIDs []int64 `json:"messageIds"`
			Reader     string  `json:"reader"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Reader == "" {
			http.Error(w, "Reader identity required", http.StatusBadRequest)
			return
		}

		msg := &actors.MarkMessagesReadMsg{
			MessageIDs: req.MessageIDs,
			Reader:     req.Reader,
		}

		future := s.Context.RequestFuture(s.DirectMessageActor, msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to mark messages read", http.StatusInternalServerError)
			return
		}
		if success, ok := result.(bool); ok {
			writeJSON(w, map[string]bool{"success": success})
			return
		}
		s.respondActorResult(w, result)
	}
}

// HandleConversations returns the caller's derived conversation list:
// one entry per counterpart, newest conversation first.
func (s *Server) HandleConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userEmail := r.URL.Query().Get("userId")
		if userEmail == "" {
			http.Error(w, "User identity required", http.StatusBadRequest)
			return
		}

		summaries, err := s.Conversations.GetConversations(r.Context(), userEmail)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, summaries)
	}
}
