// Package service provides the business logic layer for the race server.
//
// The service package implements:
//   - Multi-race session management
//   - Track library access
//   - Turn orchestration and autoplay
//   - Strategy assignment with path-search fallback
//
// Core Interfaces:
//
// RaceService is the main service interface providing high-level race
// operations. SessionManager handles race session storage and lifecycle.
// TrackManager loads and lists track files.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the game engine, providing race isolation and orchestration. Each
// race session owns its own turn engine instance with independent state.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	trackMgr, err := tracks.NewManager("tracks")
//	if err != nil {
//		log.Fatal(err)
//	}
//	raceService := service.NewRaceService(sessionMgr, trackMgr)
//
//	// Create a race where every car drives itself
//	race, err := raceService.CreateRace(ctx, "oval", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Resolve turns until someone wins
//	result, err := raceService.Autoplay(ctx, race.ID, 0)
package service
