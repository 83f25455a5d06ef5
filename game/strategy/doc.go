// Package strategy provides the move sources a car can race with. Every
// strategy implements engine.MoveStrategy, producing one acceleration per
// turn for a single car:
//
//   - DoNotMove never accelerates; the car coasts on its current velocity.
//   - MoveList replays a fixed list of directions read from a file.
//   - PathFollower steers toward a list of waypoint coordinates.
//   - PathFinder searches the track for a winning plan up front and replays it.
//
// Strategies are bound to a car via Game.SetMoveStrategy and consulted once
// per turn through Game.NextCarMove.
package strategy
