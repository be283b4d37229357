package handlers

import (
	"encoding/json"
	"net/http"

	"campus-connect/internal/middleware"
	"campus-connect/internal/models"
	"campus-connect/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest represents a member registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	ID    string `json:"id"`
}

// HandleRegister registers a new member with a bcrypt-hashed password.
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Name == "" || req.Password == "" {
			http.Error(w, "Email, name and password are required", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		member := &models.Member{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: string(hash),
		}
		if err := s.DB.SaveMember(r.Context(), member); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, member)
	}
}

// HandleLogin verifies credentials and issues a JWT.
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		member, err := s.DB.GetMemberByEmail(r.Context(), req.Email)
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrMemberNotFound) {
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
				return
			}
			s.writeError(w, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := middleware.GenerateToken(member.ID, member.Email)
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, &LoginResponse{
			Token: token,
			Email: member.Email,
			Name:  member.Name,
			ID:    member.ID.String(),
		})
	}
}
