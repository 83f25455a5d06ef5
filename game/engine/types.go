package engine

// SpaceType classifies one track grid cell. The underlying byte is the
// character used in track files:
//   - '#' wall or off-track space
//   - ' ' open track space
//   - '<' finish cell crossed leftwards
//   - '>' finish cell crossed rightwards
//   - '^' finish cell crossed upwards
//   - 'v' finish cell crossed downwards
//
// Any other character in a track file marks a car's start position, with
// the character itself serving as the car's id.
type SpaceType byte

const (
	SpaceWall        SpaceType = '#'
	SpaceTrack       SpaceType = ' '
	SpaceFinishLeft  SpaceType = '<'
	SpaceFinishRight SpaceType = '>'
	SpaceFinishUp    SpaceType = '^'
	SpaceFinishDown  SpaceType = 'v'
)

const (
	// MaxCars is the maximum number of start markers a track file may contain.
	MaxCars = 9

	// CrashIndicator replaces a crashed car's id in the rendered track.
	CrashIndicator byte = 'X'

	// NoWinner is the winner index while the race is still in progress.
	NoWinner = -1
)

// SpaceTypeOf maps a track file character to its SpaceType. The second
// return value is false for car start markers and any unknown character.
func SpaceTypeOf(c byte) (SpaceType, bool) {
	switch SpaceType(c) {
	case SpaceWall, SpaceTrack, SpaceFinishLeft, SpaceFinishRight, SpaceFinishUp, SpaceFinishDown:
		return SpaceType(c), true
	default:
		return 0, false
	}
}

// Char returns the track file character for the space type.
func (s SpaceType) Char() byte {
	return byte(s)
}

// IsFinish reports whether the space is one of the four finish kinds.
func (s SpaceType) IsFinish() bool {
	switch s {
	case SpaceFinishLeft, SpaceFinishRight, SpaceFinishUp, SpaceFinishDown:
		return true
	default:
		return false
	}
}

// CorrectCrossing reports whether crossing this finish cell with the given
// velocity counts as a correct-direction crossing. Each finish kind requires
// a single velocity component sign: left -1 on x, right +1 on x, up -1 on y
// (the y axis points downward), down +1 on y. Non-finish spaces never match.
func (s SpaceType) CorrectCrossing(velocity Vector) bool {
	vs := velocity.Sign()
	switch s {
	case SpaceFinishLeft:
		return vs.X == -1
	case SpaceFinishRight:
		return vs.X == 1
	case SpaceFinishUp:
		return vs.Y == -1
	case SpaceFinishDown:
		return vs.Y == 1
	default:
		return false
	}
}
