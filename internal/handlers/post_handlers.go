package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"campus-connect/internal/models"
)

// CreatePostRequest represents a request to create a post
type CreatePostRequest struct {
	AuthorEmail string `json:"authorEmail"`
	Content     string `json:"content"`
}

// HandleCreatePost creates a post. Minimal surface: the engine only
// needs posts to exist so likes and comments have something to point at.
func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.AuthorEmail == "" || req.Content == "" {
			http.Error(w, "Author and content are required", http.StatusBadRequest)
			return
		}

		post := &models.Post{
			AuthorEmail: req.AuthorEmail,
			Content:     req.Content,
		}
		if err := s.DB.SavePost(r.Context(), post); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, post)
	}
}

// HandleLikePost records a like, then notifies the post owner. The
// notification is a side effect: if the orchestrator fails, the like
// itself still succeeds and the failure is only logged.
func (s *Server) HandleLikePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			PostID     int64  `json:"postId"`
			ActorEmail string `json:"actorEmail"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.PostID <= 0 || req.ActorEmail == "" {
			http.Error(w, "Post id and actor are required", http.StatusBadRequest)
			return
		}

		liked, err := s.DB.RecordLike(r.Context(), req.PostID, req.ActorEmail)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if liked {
			if err := s.Notifier.NotifyLike(r.Context(), req.PostID, req.ActorEmail); err != nil {
				log.Printf("Like notification failed for post %d, actor %s: %v", req.PostID, req.ActorEmail, err)
			}
		}
		writeJSON(w, map[string]bool{"liked": liked})
	}
}

// HandleCreateComment saves a comment, then notifies the post owner.
// Same side-effect policy as likes: a notification failure never fails
// the comment.
func (s *Server) HandleCreateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			PostID      int64  `json:"postId"`
			AuthorEmail string `json:"authorEmail"`
			Content     string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.PostID <= 0 || req.AuthorEmail == "" || req.Content == "" {
			http.Error(w, "Post id, author and content are required", http.StatusBadRequest)
			return
		}

		comment := &models.Comment{
			PostID:      req.PostID,
			AuthorEmail: req.AuthorEmail,
			Content:     req.Content,
		}
		if err := s.DB.SaveComment(r.Context(), comment); err != nil {
			s.writeError(w, err)
			return
		}

		if err := s.Notifier.NotifyComment(r.Context(), req.PostID, req.AuthorEmail); err != nil {
			log.Printf("Comment notification failed for post %d, author %s: %v", req.PostID, req.AuthorEmail, err)
		}
		writeJSON(w, comment)
	}
}
