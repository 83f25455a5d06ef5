package engine

import "fmt"

// Direction names one of the nine accelerations with components in {-1,0,1}.
// The zero value is not a valid direction; TakeTurn rejects it, which lets
// callers detect an unset acceleration.
type Direction int

const (
	None Direction = iota + 1
	Left
	Right
	Up
	Down
	UpLeft
	UpRight
	DownLeft
	DownRight
)

// The y axis points downward, so Up carries a negative y component.
var directionVectors = map[Direction]Vector{
	None:      {X: 0, Y: 0},
	Left:      {X: -1, Y: 0},
	Right:     {X: 1, Y: 0},
	Up:        {X: 0, Y: -1},
	Down:      {X: 0, Y: 1},
	UpLeft:    {X: -1, Y: -1},
	UpRight:   {X: 1, Y: -1},
	DownLeft:  {X: -1, Y: 1},
	DownRight: {X: 1, Y: 1},
}

var directionNames = map[Direction]string{
	None:      "NONE",
	Left:      "LEFT",
	Right:     "RIGHT",
	Up:        "UP",
	Down:      "DOWN",
	UpLeft:    "UP_LEFT",
	UpRight:   "UP_RIGHT",
	DownLeft:  "DOWN_LEFT",
	DownRight: "DOWN_RIGHT",
}

// Directions returns all nine accelerations in a stable order.
func Directions() []Direction {
	return []Direction{None, Left, Right, Up, Down, UpLeft, UpRight, DownLeft, DownRight}
}

// Valid reports whether d is one of the nine named directions.
func (d Direction) Valid() bool {
	_, ok := directionVectors[d]
	return ok
}

// Vector returns the acceleration vector for the direction. The zero
// direction maps to the zero vector.
func (d Direction) Vector() Vector {
	return directionVectors[d]
}

// String returns the direction's name as used in move list files.
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection maps a move list file token to a Direction.
func ParseDirection(name string) (Direction, error) {
	for d, n := range directionNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction: %q", name)
}

// DirectionOf returns the direction whose vector equals the sign of v.
// Any integer vector maps to exactly one of the nine directions.
func DirectionOf(v Vector) Direction {
	vs := v.Sign()
	for d, dv := range directionVectors {
		if dv == vs {
			return d
		}
	}
	// Unreachable: every sign vector has components in {-1,0,1}.
	return None
}
