// Package service provides the business logic layer for the 2048 game server.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup for game variants
//   - Move processing with per-move events and step traces
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and persistence.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// game engine. Engines hold no locks, so every session operation goes through a
// single service mutex. Sessions are saved after each call that changed them;
// persistence failures are logged and never fail the request.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "left", false)
//
// Errors:
//
// Unknown sessions wrap ErrSessionNotFound, unknown configs wrap
// ErrConfigNotFound, and bad directions wrap engine.ErrInvalidDirection, so
// transports can map them to status codes with errors.Is.
package service
