package handlers

import (
	"encoding/json"
	"net/http"
)

// HandleListNotifications returns all notifications for a recipient,
// newest first.
func (s *Server) HandleListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		recipient := r.URL.Query().Get("recipient")
		if recipient == "" {
			http.Error(w, "Recipient identity required", http.StatusBadRequest)
			return
		}

		views, err := s.Notifier.ListAll(r.Context(), recipient)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, views)
	}
}

// HandleListUnreadNotifications returns the unread notifications for a
// recipient, newest first.
func (s *Server) HandleListUnreadNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		recipient := r.URL.Query().Get("recipient")
		if recipient == "" {
			http.Error(w, "Recipient identity required", http.StatusBadRequest)
			return
		}

		views, err := s.Notifier.ListUnread(r.Context(), recipient)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, views)
	}
}

// HandleMarkNotificationRead marks a single notification as read.
func (s *Server) HandleMarkNotificationRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			ID int64 `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.ID <= 0 {
			http.Error(w, "Notification id required", http.StatusBadRequest)
			return
		}

		if err := s.Notifier.MarkRead(r.Context(), req.ID); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, map[string]bool{"success": true})
	}
}

// HandleMarkAllNotificationsRead marks every unread notification of a
// recipient as read.
func (s *Server) HandleMarkAllNotificationsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			Recipient string `json:"recipient"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Recipient == "" {
			http.Error(w, "Recipient identity required", http.StatusBadRequest)
			return
		}

		if err := s.Notifier.MarkAllRead(r.Context(), req.Recipient); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, map[string]bool{"success": true})
	}
}
