// Command trackcheck prints quick, human-readable heuristics about track
// files. It summarizes dimensions, car starts, and finish cells, reports
// format errors, and runs the path search per car to flag unwinnable
// starting positions.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mwegmann/gridrace/game/engine"
	"github.com/mwegmann/gridrace/game/strategy"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <track-file>...\n", os.Args[0])
		os.Exit(2)
	}

	failures := 0
	for _, path := range os.Args[1:] {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		if !analyzeTrack(path) {
			failures++
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

// analyzeTrack prints a summary for one track file and reports whether the
// file is a valid track.
func analyzeTrack(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return false
	}
	defer f.Close()

	track, err := engine.ParseTrack(f)
	if err != nil {
		fmt.Printf("Invalid track: %v\n", err)
		return false
	}

	fmt.Printf("Size: %d x %d\n", track.Width(), track.Height())
	fmt.Printf("Cars: %d\n", track.CarCount())

	for i := 0; i < track.CarCount(); i++ {
		car, _ := track.Car(i)
		pos := car.Position()
		fmt.Printf("  %c starts at (%d, %d)\n", car.ID(), pos.X, pos.Y)
	}

	printFinishCells(track)
	printPlanSummary(track)
	return true
}

// printFinishCells counts finish cells per required direction.
func printFinishCells(track *engine.Track) {
	counts := make(map[engine.SpaceType]int)
	for y := 0; y < track.Height(); y++ {
		for x := 0; x < track.Width(); x++ {
			space := track.SpaceTypeAt(engine.Vector{X: x, Y: y})
			if space.IsFinish() {
				counts[space]++
			}
		}
	}

	total := 0
	kinds := make([]engine.SpaceType, 0, len(counts))
	for kind, n := range counts {
		total += n
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	fmt.Printf("Finish cells: %d\n", total)
	for _, kind := range kinds {
		fmt.Printf("  '%c': %d\n", kind.Char(), counts[kind])
	}
	if total == 0 {
		fmt.Println("WARNING: no finish cells, the race can only end by crashes")
	}
}

// printPlanSummary runs the path search for each car and reports plan
// lengths. A missing plan usually means the car is walled in or every
// finish line faces the wrong way.
func printPlanSummary(track *engine.Track) {
	for i := 0; i < track.CarCount(); i++ {
		game, err := engine.NewGame(track)
		if err != nil {
			fmt.Printf("Error building game: %v\n", err)
			return
		}

		id, _ := game.CarID(i)
		finder, err := strategy.NewPathFinder(game, i)
		if err != nil {
			fmt.Printf("  car %c: no winning plan (%v)\n", id, err)
			continue
		}
		fmt.Printf("  car %c: winning plan in %d moves\n", id, len(finder.Plan()))
	}
}
