package engine

import (
	"fmt"
	"regexp"
	"strconv"
)

// Vector is an immutable pair of integers used for positions, velocities,
// and accelerations. Two vectors with equal components are interchangeable
// and usable as map keys.
type Vector struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var vectorPattern = regexp.MustCompile(`^\([Xx]:(-?\d+)\s*,\s*[Yy]:(-?\d+)\)$`)

// Add returns the component-wise sum of v and other.
func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the component-wise difference of v and other.
func (v Vector) Sub(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

// Abs returns a vector with the absolute values of v's components.
func (v Vector) Abs() Vector {
	return Vector{X: abs(v.X), Y: abs(v.Y)}
}

// Sign returns a vector with each component mapped to -1, 0, or 1.
func (v Vector) Sign() Vector {
	return Vector{X: sign(v.X), Y: sign(v.Y)}
}

// Dot returns the scalar product of v and other.
func (v Vector) Dot(other Vector) int {
	return v.X*other.X + v.Y*other.Y
}

// String renders the vector in the textual form used by waypoint files.
func (v Vector) String() string {
	return fmt.Sprintf("(X:%d, Y:%d)", v.X, v.Y)
}

// ParseVector parses a vector from its textual form "(X:<int>, Y:<int>)".
// Both integers may carry an optional sign.
func ParseVector(s string) (Vector, error) {
	m := vectorPattern.FindStringSubmatch(s)
	if m == nil {
		return Vector{}, fmt.Errorf("invalid vector format: %q", s)
	}

	// The pattern guarantees both groups parse as integers.
	x, _ := strconv.Atoi(m[1])
	y, _ := strconv.Atoi(m[2])
	return Vector{X: x, Y: y}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
