package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"campus-connect/internal/database"
	"campus-connect/internal/engine"
	"campus-connect/internal/messaging"
	"campus-connect/internal/notifications"
	"campus-connect/internal/utils"
	"campus-connect/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies: the actor system, the derived
// services, and the delivery bus.
type Server struct {
	System             *actor.ActorSystem
	Context            *actor.RootContext
	Engine             *engine.Engine
	DirectMessageActor *actor.PID
	Conversations      *messaging.ConversationService
	Notifier           *notifications.Orchestrator
	Hub                *websocket.Hub
	DB                 database.DBAdapter
	Metrics            *utils.MetricsCollector
	RequestTimeout     time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	conversations *messaging.ConversationService,
	notifier *notifications.Orchestrator,
	hub *websocket.Hub,
	db database.DBAdapter,
	metrics *utils.MetricsCollector,
) *Server {
	return &Server{
		System:             system,
		Context:            system.Root,
		Engine:             eng,
		DirectMessageActor: eng.GetDirectMessageActor(),
		Conversations:      conversations,
		Notifier:           notifier,
		Hub:                hub,
		DB:                 db,
		Metrics:            metrics,
		RequestTimeout:     5 * time.Second, // Default timeout for actor requests
	}
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status; AppError codes carry
// their own mapping, anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.Metrics.IncrementErrors()
	if appErr, ok := err.(*utils.AppError); ok {
		http.Error(w, appErr.Message, utils.AppErrorToHTTPStatus(appErr.Code))
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// respondActorResult writes an actor response, unwrapping AppError
// replies the way the actors report failures.
func (s *Server) respondActorResult(w http.ResponseWriter, result interface{}) {
	if appErr, ok := result.(*utils.AppError); ok {
		s.writeError(w, appErr)
		return
	}
	writeJSON(w, result)
}
