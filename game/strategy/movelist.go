package strategy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mwegmann/gridrace/game/engine"
)

// MoveList replays a fixed sequence of accelerations read from a text
// source, one direction name per line (NONE, LEFT, RIGHT, UP, DOWN,
// UP_LEFT, UP_RIGHT, DOWN_LEFT, DOWN_RIGHT). Once the list is exhausted it
// keeps returning the neutral acceleration.
type MoveList struct {
	moves []engine.Direction
	next  int
}

// NewMoveList parses a move list from r. Blank lines are skipped; an
// unknown direction name fails with its line number.
func NewMoveList(r io.Reader) (*MoveList, error) {
	var moves []engine.Direction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			continue
		}
		direction, err := engine.ParseDirection(token)
		if err != nil {
			return nil, fmt.Errorf("move list line %d: %w", lineNo, err)
		}
		moves = append(moves, direction)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading move list: %w", err)
	}

	return &MoveList{moves: moves}, nil
}

// NewMoveListFromFile parses a move list from the file at path.
func NewMoveListFromFile(path string) (*MoveList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening move list: %w", err)
	}
	defer f.Close()

	return NewMoveList(f)
}

// NextMove returns the next listed acceleration, or the neutral
// acceleration once the list has run out.
func (s *MoveList) NextMove() engine.Direction {
	if s.next >= len(s.moves) {
		return engine.None
	}
	move := s.moves[s.next]
	s.next++
	return move
}

// Remaining returns how many listed moves have not been played yet.
func (s *MoveList) Remaining() int {
	return len(s.moves) - s.next
}
