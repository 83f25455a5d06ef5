package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCarIndex reports a car index outside the valid range.
	ErrInvalidCarIndex = errors.New("invalid car index")

	// ErrNoAcceleration reports a turn request without an acceleration.
	ErrNoAcceleration = errors.New("acceleration not set")

	// ErrNoStrategy reports a car whose move strategy was never assigned.
	ErrNoStrategy = errors.New("move strategy not set")
)

// MoveStrategy supplies one acceleration per turn for a single car. The
// turn engine depends only on this capability; implementations live in the
// strategy package.
type MoveStrategy interface {
	NextMove() Direction
}

// crossingRecord tracks a single car's finish-line crossing history. A car
// that ever crossed in the wrong direction needs two consecutive correct
// crossings before it may win.
type crossingRecord struct {
	hadIncorrect       bool
	consecutiveCorrect int
}

// Game is the turn engine. It resolves one car's turn at a time: applying
// the acceleration, rasterizing the move, walking the cells for crashes
// and finish crossings, and maintaining winner state and the active-car
// rotation. All operations are synchronous in-memory mutations; turns
// never overlap.
type Game struct {
	track      *Track
	strategies []MoveStrategy
	current    int
	winner     int
	crossings  map[byte]*crossingRecord
}

// NewGame creates a turn engine for the given track. The first car in
// track order is active; there is no winner.
func NewGame(track *Track) (*Game, error) {
	if track == nil {
		return nil, errors.New("track must not be nil")
	}

	g := &Game{
		track:      track,
		strategies: make([]MoveStrategy, track.CarCount()),
		winner:     NoWinner,
		crossings:  make(map[byte]*crossingRecord, track.CarCount()),
	}
	for i := 0; i < track.CarCount(); i++ {
		car, _ := track.Car(i)
		g.crossings[car.ID()] = &crossingRecord{}
	}
	return g, nil
}

// Track returns the track this game runs on.
func (g *Game) Track() *Track {
	return g.track
}

// CarCount returns the number of cars in the race.
func (g *Game) CarCount() int {
	return g.track.CarCount()
}

// CurrentCarIndex returns the index of the active car.
func (g *Game) CurrentCarIndex() int {
	return g.current
}

// Winner returns the winning car's index, or NoWinner while the race is
// in progress.
func (g *Game) Winner() int {
	return g.winner
}

// CarID returns the id of the car at the given index.
func (g *Game) CarID(index int) (byte, error) {
	car, err := g.track.Car(index)
	if err != nil {
		return 0, err
	}
	return car.ID(), nil
}

// CarPosition returns the current position of the car at the given index.
func (g *Game) CarPosition(index int) (Vector, error) {
	car, err := g.track.Car(index)
	if err != nil {
		return Vector{}, err
	}
	return car.Position(), nil
}

// CarVelocity returns the current velocity of the car at the given index.
func (g *Game) CarVelocity(index int) (Vector, error) {
	car, err := g.track.Car(index)
	if err != nil {
		return Vector{}, err
	}
	return car.Velocity(), nil
}

// SetMoveStrategy assigns the move strategy for the car at the given index.
func (g *Game) SetMoveStrategy(index int, strategy MoveStrategy) error {
	if index < 0 || index >= len(g.strategies) {
		return fmt.Errorf("%w: %d", ErrInvalidCarIndex, index)
	}
	g.strategies[index] = strategy
	return nil
}

// NextCarMove asks the strategy of the car at the given index for its next
// acceleration.
func (g *Game) NextCarMove(index int) (Direction, error) {
	if index < 0 || index >= len(g.strategies) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCarIndex, index)
	}
	strategy := g.strategies[index]
	if strategy == nil {
		return 0, fmt.Errorf("%w: car %d", ErrNoStrategy, index)
	}
	return strategy.NextMove(), nil
}

// TakeTurn resolves the active car's turn with the given acceleration.
// It applies the acceleration to the velocity, rasterizes the straight
// move to position+velocity, and walks the cells in order, resolving wall
// and car crashes and finish-line crossings. A rejected turn leaves all
// state untouched; turns after a winner exists or for a crashed car are
// no-ops.
func (g *Game) TakeTurn(acceleration Direction) error {
	if !acceleration.Valid() {
		return fmt.Errorf("%w: %v", ErrNoAcceleration, acceleration)
	}

	car, _ := g.track.Car(g.current)
	if g.winner != NoWinner || car.Crashed() {
		return nil
	}

	car.Accelerate(acceleration.Vector())
	path := Line(car.Position(), car.NextPosition())

	// Walk the move cell by cell, skipping the starting cell.
	for _, pos := range path[1:] {
		space := g.track.SpaceTypeAt(pos)

		if space == SpaceWall {
			car.Crash(pos)
			g.checkSoleSurvivor()
			return nil
		}
		if space == SpaceTrack && g.occupiedByOther(pos, g.current) {
			car.Crash(pos)
			g.checkSoleSurvivor()
			return nil
		}
		if space.IsFinish() && g.resolveCrossing(car, space) {
			return nil
		}
	}

	car.Move()
	return nil
}

// SwitchToNextActiveCar advances the active index to the next non-crashed
// car. If every car has crashed, the index is left unchanged.
func (g *Game) SwitchToNextActiveCar() {
	count := g.track.CarCount()
	for i := 1; i <= count; i++ {
		index := (g.current + i) % count
		car, _ := g.track.Car(index)
		if !car.Crashed() {
			g.current = index
			return
		}
	}
}

// resolveCrossing applies the finish-line rule for one crossed cell and
// reports whether the turn ends (the car won). A correct crossing wins
// immediately unless the car has a recorded wrong-direction crossing, in
// which case it must reach two consecutive correct crossings first. A
// wrong-direction crossing never interrupts the move.
func (g *Game) resolveCrossing(car *Car, space SpaceType) bool {
	record := g.crossings[car.ID()]

	if !space.CorrectCrossing(car.Velocity()) {
		record.hadIncorrect = true
		record.consecutiveCorrect = 0
		return false
	}

	if !record.hadIncorrect {
		g.declareWinner(car)
		return true
	}

	record.consecutiveCorrect++
	if record.consecutiveCorrect >= 2 {
		g.declareWinner(car)
		return true
	}
	return false
}

// declareWinner completes the winning car's move to its intended target
// and records it as winner.
func (g *Game) declareWinner(car *Car) {
	car.Move()
	g.winner = g.current
}

// checkSoleSurvivor declares the last non-crashed car the winner when a
// crash leaves exactly one active car.
func (g *Game) checkSoleSurvivor() {
	active := 0
	lastIndex := NoWinner
	for i := 0; i < g.track.CarCount(); i++ {
		car, _ := g.track.Car(i)
		if !car.Crashed() {
			active++
			lastIndex = i
		}
	}
	if active == 1 {
		g.winner = lastIndex
	}
}

// occupiedByOther reports whether a different, non-crashed car occupies
// the given position.
func (g *Game) occupiedByOther(pos Vector, carIndex int) bool {
	for i := 0; i < g.track.CarCount(); i++ {
		if i == carIndex {
			continue
		}
		other, _ := g.track.Car(i)
		if !other.Crashed() && other.Position() == pos {
			return true
		}
	}
	return false
}
