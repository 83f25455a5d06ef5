package strategy

import (
	"errors"
	"fmt"

	"github.com/mwegmann/gridrace/game/engine"
)

const (
	// MaxSearchDepth caps the plan length the path finder will consider.
	MaxSearchDepth = 500

	// MaxStatesExplored caps the total number of search states dequeued.
	MaxStatesExplored = 50000
)

// ErrSearchExhausted reports that the path search hit its depth or state
// bound without reaching a finish cell. Callers are expected to fall back
// to another strategy.
var ErrSearchExhausted = errors.New("path search exhausted without reaching a finish")

// searchKey deduplicates visited states by structural equality.
type searchKey struct {
	pos engine.Vector
	vel engine.Vector
}

// searchNode is one explored (position, velocity) state with a back-pointer
// for plan reconstruction.
type searchNode struct {
	pos    engine.Vector
	vel    engine.Vector
	parent *searchNode
	move   engine.Direction
	depth  int
}

// PathFinder computes a full winning plan up front with a breadth-first
// search over (position, velocity) states, then replays it one acceleration
// per turn. The search applies the same wall and collision rules as the
// turn engine, but is stricter about finish lines: it never plans through a
// wrong-direction crossing, so it only finds direct single-crossing wins.
// The two-crossing recovery the engine allows is out of its reach.
type PathFinder struct {
	moves []engine.Direction
	next  int
}

// NewPathFinder searches the game's track for a winning plan for the car
// at the given index. It fails with ErrSearchExhausted when no finish is
// reachable within the search bounds; it never substitutes made-up moves.
func NewPathFinder(game *engine.Game, carIndex int) (*PathFinder, error) {
	if game == nil {
		return nil, fmt.Errorf("path finder requires a game")
	}
	car, err := game.Track().Car(carIndex)
	if err != nil {
		return nil, err
	}

	plan, err := searchPlan(game.Track(), car)
	if err != nil {
		return nil, err
	}
	return &PathFinder{moves: plan}, nil
}

// NextMove returns the next planned acceleration, or the neutral
// acceleration once the plan has been replayed in full.
func (s *PathFinder) NextMove() engine.Direction {
	if s.next >= len(s.moves) {
		return engine.None
	}
	move := s.moves[s.next]
	s.next++
	return move
}

// Plan returns a copy of the full computed plan.
func (s *PathFinder) Plan() []engine.Direction {
	plan := make([]engine.Direction, len(s.moves))
	copy(plan, s.moves)
	return plan
}

// searchPlan runs the breadth-first search from the car's current state.
// The first goal state dequeued yields the plan with the fewest
// accelerations.
func searchPlan(track *engine.Track, car *engine.Car) ([]engine.Direction, error) {
	start := &searchNode{pos: car.Position(), vel: car.Velocity()}
	queue := []*searchNode{start}
	visited := map[searchKey]bool{
		{pos: start.pos, vel: start.vel}: true,
	}

	dequeued := 0
	for len(queue) > 0 {
		if dequeued >= MaxStatesExplored {
			return nil, fmt.Errorf("%w: explored %d states", ErrSearchExhausted, dequeued)
		}
		node := queue[0]
		queue = queue[1:]
		dequeued++

		// Goal: standing on a finish cell with a matching velocity sign.
		if space := track.SpaceTypeAt(node.pos); space.IsFinish() && space.CorrectCrossing(node.vel) {
			return reconstructPlan(node), nil
		}

		if node.depth >= MaxSearchDepth {
			continue
		}
		for _, acceleration := range engine.Directions() {
			vel := node.vel.Add(acceleration.Vector())
			pos := node.pos.Add(vel)
			key := searchKey{pos: pos, vel: vel}
			if visited[key] {
				continue
			}
			if !validMove(track, car.ID(), node.pos, pos, vel) {
				continue
			}
			visited[key] = true
			queue = append(queue, &searchNode{
				pos:    pos,
				vel:    vel,
				parent: node,
				move:   acceleration,
				depth:  node.depth + 1,
			})
		}
	}

	return nil, fmt.Errorf("%w: frontier empty after %d states", ErrSearchExhausted, dequeued)
}

// validMove checks a candidate move the way the turn engine walks it: no
// wall cells, no cells occupied by another active car, and additionally no
// finish cell crossed in the wrong direction anywhere along the path.
func validMove(track *engine.Track, carID byte, from, to, vel engine.Vector) bool {
	path := engine.Line(from, to)
	for _, cell := range path[1:] {
		space := track.SpaceTypeAt(cell)

		if space == engine.SpaceWall {
			return false
		}
		if space == engine.SpaceTrack && occupiedByOther(track, cell, carID) {
			return false
		}
		if space.IsFinish() && !space.CorrectCrossing(vel) {
			return false
		}
	}
	return true
}

// occupiedByOther reports whether a different, non-crashed car currently
// occupies the given cell.
func occupiedByOther(track *engine.Track, pos engine.Vector, carID byte) bool {
	for i := 0; i < track.CarCount(); i++ {
		other, _ := track.Car(i)
		if other.ID() == carID {
			continue
		}
		if !other.Crashed() && other.Position() == pos {
			return true
		}
	}
	return false
}

// reconstructPlan walks the parent pointers back to the root and reverses
// the collected accelerations.
func reconstructPlan(goal *searchNode) []engine.Direction {
	var reversed []engine.Direction
	for node := goal; node.parent != nil; node = node.parent {
		reversed = append(reversed, node.move)
	}

	plan := make([]engine.Direction, len(reversed))
	for i, move := range reversed {
		plan[len(plan)-1-i] = move
	}
	return plan
}
