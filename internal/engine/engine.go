package engine

import (
	"campus-connect/internal/database"
	"campus-connect/internal/engine/actors"
	"campus-connect/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine spawns and coordinates the actors of the system.
type Engine struct {
	directMessageActor *actor.PID
}

func NewEngine(system *actor.ActorSystem, db database.DBAdapter, hub *websocket.Hub) *Engine {
	context := system.Root

	// Spawn direct message actor
	dmProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewDirectMessageActor(db, hub)
	})
	dmPID := context.Spawn(dmProps)

	return &Engine{
		directMessageActor: dmPID,
	}
}

// GetDirectMessageActor returns the PID of the direct message actor
func (e *Engine) GetDirectMessageActor() *actor.PID {
	return e.directMessageActor
}
