package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTrackParsesBoardAndCars(t *testing.T) {
	track, err := NewTrack([]string{
		"#####",
		"#a b#",
		"##>##",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if track.Width() != 5 || track.Height() != 3 {
		t.Errorf("expected 5x3 track, got %dx%d", track.Width(), track.Height())
	}
	if track.CarCount() != 2 {
		t.Fatalf("expected 2 cars, got %d", track.CarCount())
	}

	carA, err := track.Car(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if carA.ID() != 'a' {
		t.Errorf("expected first car id 'a', got %q", string(carA.ID()))
	}
	if carA.Position() != (Vector{X: 1, Y: 1}) {
		t.Errorf("expected car a at (1,1), got %v", carA.Position())
	}
	if carA.Velocity() != (Vector{}) {
		t.Errorf("expected zero initial velocity, got %v", carA.Velocity())
	}

	// The start marker cell itself is open track.
	if space := track.SpaceTypeAt(Vector{X: 1, Y: 1}); space != SpaceTrack {
		t.Errorf("expected start marker cell to be track, got %q", space.Char())
	}
	if space := track.SpaceTypeAt(Vector{X: 2, Y: 2}); space != SpaceFinishRight {
		t.Errorf("expected finish right at (2,2), got %q", space.Char())
	}
}

func TestNewTrackFormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		kind  FormatErrorKind
	}{
		{"empty", nil, FormatEmptyFile},
		{"ragged rows", []string{"####", "#a #", "###"}, FormatInconsistentLineLength},
		{"no cars", []string{"####", "#  #", "####"}, FormatNoCars},
		{"too many cars", []string{"abcdefghij"}, FormatTooManyCars},
		{"duplicate id", []string{"#aa#"}, FormatDuplicateCarID},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewTrack(test.lines)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected *FormatError, got %T: %v", err, err)
			}
			if formatErr.Kind != test.kind {
				t.Errorf("expected kind %v, got %v", test.kind, formatErr.Kind)
			}
		})
	}
}

func TestParseTrackSkipsLeadingBlanksAndStopsAtBlank(t *testing.T) {
	input := "\n\n###\n#a#\n###\n\n#ignored#\n"

	track, err := ParseTrack(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Height() != 3 {
		t.Errorf("expected 3 rows, got %d", track.Height())
	}
	if track.Width() != 3 {
		t.Errorf("expected 3 columns, got %d", track.Width())
	}
}

func TestSpaceTypeAtOutOfBounds(t *testing.T) {
	track, err := NewTrack([]string{"#a#"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outside := []Vector{
		{X: -1, Y: 0},
		{X: 3, Y: 0},
		{X: 0, Y: -1},
		{X: 0, Y: 1},
	}
	for _, pos := range outside {
		if space := track.SpaceTypeAt(pos); space != SpaceWall {
			t.Errorf("SpaceTypeAt(%v): expected wall, got %q", pos, space.Char())
		}
	}
}

func TestTrackCarInvalidIndex(t *testing.T) {
	track, err := NewTrack([]string{"#a#"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, index := range []int{-1, 1, 99} {
		if _, err := track.Car(index); !errors.Is(err, ErrInvalidCarIndex) {
			t.Errorf("Car(%d): expected ErrInvalidCarIndex, got %v", index, err)
		}
	}
}

func TestTrackStringRendersCarsAndCrashes(t *testing.T) {
	track, err := NewTrack([]string{
		"#####",
		"#a b#",
		"#####",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered := track.String()
	if !strings.Contains(rendered, "#a b#") {
		t.Errorf("expected active cars rendered by id, got:\n%s", rendered)
	}

	carB, _ := track.Car(1)
	carB.Crash(carB.Position())

	rendered = track.String()
	if !strings.Contains(rendered, "#a X#") {
		t.Errorf("expected crashed car rendered as X, got:\n%s", rendered)
	}
}
