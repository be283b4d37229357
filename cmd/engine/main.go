package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-connect/internal/config"
	"campus-connect/internal/database"
	"campus-connect/internal/engine"
	"campus-connect/internal/handlers"
	"campus-connect/internal/messaging"
	"campus-connect/internal/middleware"
	"campus-connect/internal/notifications"
	"campus-connect/internal/utils"
	"campus-connect/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	// Load configuration from environment
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := utils.NewMetricsCollector()

	// Connect to PostgreSQL and ensure the schema exists
	db, err := database.NewPostgresDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.InitializeTables(initCtx); err != nil {
		cancel()
		log.Fatalf("Failed to initialize tables: %v", err)
	}
	cancel()
	log.Println("Connected to PostgreSQL and initialized tables")

	// Delivery bus for per-recipient pushes
	hub := websocket.NewHub(metrics)

	// Actor system hosts the direct message actor
	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, db, hub)

	conversations := messaging.NewConversationService(db, db, metrics, cfg.Server.ConversationReadTimeout)
	notifier := notifications.NewOrchestrator(db, db, db, hub, metrics)

	server := handlers.NewServer(system, eng, conversations, notifier, hub, db, metrics)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HandleHealth())
	mux.HandleFunc("/member/register", server.HandleRegister())
	mux.HandleFunc("/member/login", server.HandleLogin())
	mux.HandleFunc("/messages", server.HandleDirectMessages())
	mux.HandleFunc("/messages/history", server.HandleMessageHistory())
	mux.HandleFunc("/messages/read", server.HandleMarkMessagesRead())
	mux.HandleFunc("/messages/conversations", server.HandleConversations())
	mux.HandleFunc("/notifications", server.HandleListNotifications())
	mux.HandleFunc("/notifications/unread", server.HandleListUnreadNotifications())
	mux.HandleFunc("/notifications/read", server.HandleMarkNotificationRead())
	mux.HandleFunc("/notifications/read-all", server.HandleMarkAllNotificationsRead())
	mux.HandleFunc("/posts", server.HandleCreatePost())
	mux.HandleFunc("/posts/like", server.HandleLikePost())
	mux.HandleFunc("/comments", server.HandleCreateComment())
	mux.HandleFunc("/ws", server.HandleWebSocket())

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	handler := middleware.CORSMiddleware(corsConfig)(middleware.JWTAuth(mux))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	go func() {
		log.Printf("Starting server on %s", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Shut down cleanly on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("Database close error: %v", err)
	}
	log.Println("Server stopped")
}
