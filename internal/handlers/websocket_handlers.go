package handlers

import (
	"log"
	"net/http"

	"campus-connect/internal/middleware"
	"campus-connect/internal/websocket"

	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: check against Config.AllowedOrigins
		return true
	},
}

// HandleWebSocket authenticates the connection, upgrades it, and binds
// it to the caller's delivery-bus subscription.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1. Authenticate using JWT from query parameter
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			log.Println("WebSocket connection failed: Missing token")
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: Invalid token: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		if claims.Email == "" {
			log.Println("WebSocket connection failed: Empty email in token claims")
			http.Error(w, "Invalid email in token", http.StatusInternalServerError)
			return
		}

		// 2. Upgrade connection
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for %s: %v", claims.Email, err)
			// Cannot write an HTTP error after the upgrade attempt
			return
		}
		log.Printf("WebSocket connection upgraded for %s", claims.Email)

		// 3. Subscribe to the delivery bus and start the pumps
		client := &websocket.Client{
			Sub:  s.Hub.Subscribe(claims.Email),
			Conn: conn,
		}
		go client.WritePump()
		go client.ReadPump()
	}
}
