// Package mcp exposes the 2048 game to AI agents over the Model Context Protocol.
//
// The client is a thin proxy: every tool call becomes a REST request against
// the game server, so MCP agents and HTTP clients share the same sessions.
//
// MCP Tools:
//   - create_session: Create a session, optionally from a config_id
//   - list_sessions: List all active sessions
//   - get_session: Session details and state
//   - game_state: Grid, score, status and possible moves
//   - move: Slide the tiles in one direction
//   - bulk_move: Up to 50 directions, stopping when the game ends
//   - preview_moves: Score every direction without changing the game
//   - reset_game: Start a fresh grid
//   - move_history: Paginated move log
//   - list_configs: Available grid configurations
//   - game_instructions: Rules and strategy notes
//
// Tool failures are reported as MCP error results, never as protocol errors.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the Client itself is an http.Handler for single JSON-RPC messages
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	router.Handle("/mcp", client)
package mcp
