package service

import (
	"encoding/json"

	"go-bookstore-api/internal/ws"
)

// broadcast pushes a payload to the websocket hub without blocking the
// caller. Services constructed without a hub skip it.
func broadcast(hub *ws.Hub, payload map[string]interface{}) {
	if hub == nil {
		return
	}
	message, err := json.Marshal(payload)
	if err != nil {
		return
	}
	go func() {
		hub.Broadcast <- message
	}()
}
