// Package api provides the HTTP REST API for the 2048 game server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic"}, optional)
//   - GET /api/sessions - List sessions (?sort=accessed|created|score&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Aggregate view (?sessionIds=a,b or ?configName=classic)
//   - GET /api/sessions/{id} - Session info with game state
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - {"direction": "left", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["left", "up"], "reset": false}
//   - POST /api/sessions/{id}/reset - Start a fresh grid
//   - GET /api/sessions/{id}/history - Move log (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - POST /api/configs - Save a configuration (config_id derived from name when absent)
//   - GET /api/configs/{name} - Load one configuration
//
// Infrastructure:
//   - GET /ws?session={id} - WebSocket state updates
//   - GET /metrics - Prometheus metrics
//   - GET /healthz - Liveness probe
//
// Move responses carry the engine outcome (changed, score_delta, spawned),
// the events of the move (move, merge, spawn, no_change, victory, game_over,
// reset), a compact step record and the moves still available. A move that
// changes nothing is not an error; it returns 200 with outcome.changed false.
//
// Bulk moves run up to 50 directions and stop early when the game ends. Every
// direction is validated before any is applied.
//
// Error Handling:
//
// Errors are JSON bodies of the form {"error": "message"}. Invalid directions
// and invalid configurations map to 400, unknown sessions and configurations
// to 404, anything else to 500.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	srv := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", srv)
package api
