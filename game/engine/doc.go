// Package engine provides the core game logic for the grid race.
//
// The engine package implements the race mechanics including:
//   - Vector arithmetic for positions, velocities, and accelerations
//   - Track parsing and validation from plain-text files
//   - Discrete line rasterization for movement and collision checks
//   - Per-turn movement, crash, and finish-line crossing resolution
//   - Winner determination and active-car rotation
//
// Core Types:
//
// Track is the immutable board parsed from a text file, holding the cars
// found at their start markers. Game is the turn engine operating on a
// Track: it applies accelerations, rasterizes moves, resolves crashes and
// finish crossings, and tracks the winner. Vector is the shared integer
// value type for positions, velocities, and accelerations.
//
// Usage:
//
//	track, err := engine.ParseTrack(file)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGame(track)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drive the race one turn at a time
//	if err := game.TakeTurn(engine.Right); err != nil {
//		log.Fatal(err)
//	}
//	game.SwitchToNextActiveCar()
//
// Race Rules:
//
// Each turn the current car picks an acceleration with components in
// {-1,0,1}, which is added to its velocity. The car then moves in a
// straight line to position+velocity. Hitting a wall or another active
// car crashes it. Crossing a finish cell with the correctly signed
// velocity wins the race; a car that ever crossed in the wrong direction
// must cross correctly twice in a row before it may win. If crashes leave
// a single car on the track, that car wins immediately.
package engine
