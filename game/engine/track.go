package engine

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FormatErrorKind categorizes track file validation failures so callers
// can give a precise diagnosis.
type FormatErrorKind int

const (
	FormatEmptyFile FormatErrorKind = iota
	FormatInconsistentLineLength
	FormatNoCars
	FormatTooManyCars
	FormatDuplicateCarID
)

func (k FormatErrorKind) String() string {
	switch k {
	case FormatEmptyFile:
		return "empty file"
	case FormatInconsistentLineLength:
		return "inconsistent line length"
	case FormatNoCars:
		return "no cars"
	case FormatTooManyCars:
		return "too many cars"
	case FormatDuplicateCarID:
		return "duplicate car id"
	default:
		return fmt.Sprintf("FormatErrorKind(%d)", int(k))
	}
}

// FormatError reports an invalid track file, categorized by kind.
type FormatError struct {
	Kind    FormatErrorKind
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid track format (%s): %s", e.Kind, e.Message)
}

// Track is the racetrack board: a rectangular grid of SpaceTypes with the
// origin at the top left, the x axis pointing right and the y axis pointing
// down. Car start markers found during parsing are consumed into Car
// instances; the board cell underneath becomes open track. The board is
// immutable after construction.
type Track struct {
	board  [][]SpaceType
	cars   []*Car
	width  int
	height int
}

// ParseTrack reads a track from r. Leading blank lines are ignored; the
// track block ends at the first blank line after data or at end of input.
func ParseTrack(r io.Reader) (*Track, error) {
	lines, err := ReadTrackLines(r)
	if err != nil {
		return nil, err
	}
	return NewTrack(lines)
}

// ReadTrackLines extracts the raw track block from r without validating it:
// leading blank lines are skipped and the block ends at the first blank
// line after data or at end of input.
func ReadTrackLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if len(lines) == 0 {
				continue
			}
			break
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading track: %w", err)
	}
	return lines, nil
}

// NewTrack builds a track from the given text lines, validating the format
// and extracting the cars. All validation failures are reported as a
// *FormatError with a distinct kind.
func NewTrack(lines []string) (*Track, error) {
	if len(lines) == 0 {
		return nil, &FormatError{Kind: FormatEmptyFile, Message: "track contains no lines"}
	}

	width := len(lines[0])
	for i, line := range lines[1:] {
		if len(line) != width {
			return nil, &FormatError{
				Kind:    FormatInconsistentLineLength,
				Message: fmt.Sprintf("line %d has length %d, expected %d", i+2, len(line), width),
			}
		}
	}

	t := &Track{
		board:  make([][]SpaceType, len(lines)),
		width:  width,
		height: len(lines),
	}

	for row, line := range lines {
		t.board[row] = make([]SpaceType, width)
		for col := 0; col < width; col++ {
			c := line[col]
			if space, ok := SpaceTypeOf(c); ok {
				t.board[row][col] = space
				continue
			}

			// Anything else marks a car start; the cell itself is track.
			t.board[row][col] = SpaceTrack
			for _, car := range t.cars {
				if car.ID() == c {
					return nil, &FormatError{
						Kind:    FormatDuplicateCarID,
						Message: fmt.Sprintf("duplicate car id %q", string(c)),
					}
				}
			}
			t.cars = append(t.cars, NewCar(c, Vector{X: col, Y: row}))
		}
	}

	if len(t.cars) == 0 {
		return nil, &FormatError{Kind: FormatNoCars, Message: "track contains no car start markers"}
	}
	if len(t.cars) > MaxCars {
		return nil, &FormatError{
			Kind:    FormatTooManyCars,
			Message: fmt.Sprintf("track contains %d cars, maximum is %d", len(t.cars), MaxCars),
		}
	}

	return t, nil
}

// Width returns the number of columns of the track grid.
func (t *Track) Width() int {
	return t.width
}

// Height returns the number of rows of the track grid.
func (t *Track) Height() int {
	return t.height
}

// CarCount returns the number of cars on the track.
func (t *Track) CarCount() int {
	return len(t.cars)
}

// Car returns the car at the given index.
func (t *Track) Car(index int) (*Car, error) {
	if index < 0 || index >= len(t.cars) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCarIndex, index)
	}
	return t.cars[index], nil
}

// SpaceTypeAt returns the space type at the given position. Positions
// outside the track bounds are walls.
func (t *Track) SpaceTypeAt(pos Vector) SpaceType {
	if pos.X < 0 || pos.X >= t.width || pos.Y < 0 || pos.Y >= t.height {
		return SpaceWall
	}
	return t.board[pos.Y][pos.X]
}

// CharAt returns the character rendering of the given grid position. An
// active car renders as its id, a crashed car as the crash indicator, and
// everything else as the space type's character.
func (t *Track) CharAt(row, col int) byte {
	for _, car := range t.cars {
		pos := car.Position()
		if pos.Y == row && pos.X == col {
			if car.Crashed() {
				return CrashIndicator
			}
			return car.ID()
		}
	}
	return t.board[row][col].Char()
}

// String renders the current state of the track including car positions.
func (t *Track) String() string {
	var sb strings.Builder
	for row := 0; row < t.height; row++ {
		for col := 0; col < t.width; col++ {
			sb.WriteByte(t.CharAt(row, col))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
