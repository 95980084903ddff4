// Package websocket pushes live 2048 game state to browser and terminal
// watchers.
//
// Architecture:
//
// A central Hub owns every connection. Its Run loop is the only goroutine
// that changes the client set; register, unregister and broadcast requests
// all arrive over channels. Each connection gets a read pump and a write
// pump.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Custom events carry a "data" field instead of "game_state". Incoming
// messages are read only to keep the connection alive.
//
// Session Integration:
//
// Clients pick a session with the ?session= query parameter. Session IDs
// match case-insensitively, and updates go only to clients of that session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(id, state)
//
// Broadcasting never blocks the caller. When the queue is full the update
// is dropped, and a client that cannot keep up is disconnected.
package websocket
