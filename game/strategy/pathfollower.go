package strategy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mwegmann/gridrace/game/engine"
)

// PathFollower steers a car along a list of waypoint coordinates read from
// a text source, one "(X:<int>, Y:<int>)" per line. Each turn it
// accelerates by the sign of the offset between the current waypoint and
// the position the car would coast to, which both steers and brakes toward
// the waypoint. Reached waypoints are skipped; once all are reached the
// strategy stops accelerating.
type PathFollower struct {
	car       *engine.Car
	waypoints []engine.Vector
	index     int
}

// NewPathFollower parses waypoints from r for the given car. Blank lines
// are skipped; a malformed coordinate fails with its line number.
func NewPathFollower(r io.Reader, car *engine.Car) (*PathFollower, error) {
	if car == nil {
		return nil, fmt.Errorf("path follower requires a car")
	}

	var waypoints []engine.Vector
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			continue
		}
		waypoint, err := engine.ParseVector(token)
		if err != nil {
			return nil, fmt.Errorf("waypoint line %d: %w", lineNo, err)
		}
		waypoints = append(waypoints, waypoint)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading waypoints: %w", err)
	}

	return &PathFollower{car: car, waypoints: waypoints}, nil
}

// NewPathFollowerFromFile parses waypoints from the file at path.
func NewPathFollowerFromFile(path string, car *engine.Car) (*PathFollower, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening waypoint file: %w", err)
	}
	defer f.Close()

	return NewPathFollower(f, car)
}

// NextMove returns the acceleration that moves the car's coast endpoint
// toward the current waypoint, or the neutral acceleration once every
// waypoint has been reached.
func (s *PathFollower) NextMove() engine.Direction {
	for s.index < len(s.waypoints) && s.car.Position() == s.waypoints[s.index] {
		s.index++
	}
	if s.index >= len(s.waypoints) {
		return engine.None
	}

	offset := s.waypoints[s.index].Sub(s.car.NextPosition())
	return engine.DirectionOf(offset)
}
