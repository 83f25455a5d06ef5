package engine

import (
	"errors"
	"testing"
)

func mustTrack(t *testing.T, lines []string) *Track {
	t.Helper()
	track, err := NewTrack(lines)
	if err != nil {
		t.Fatalf("failed to build track: %v", err)
	}
	return track
}

func mustGame(t *testing.T, lines []string) *Game {
	t.Helper()
	game, err := NewGame(mustTrack(t, lines))
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}
	return game
}

func takeTurns(t *testing.T, game *Game, moves ...Direction) {
	t.Helper()
	for i, move := range moves {
		if err := game.TakeTurn(move); err != nil {
			t.Fatalf("turn %d (%v): unexpected error: %v", i+1, move, err)
		}
	}
}

func TestTakeTurnRejectsUnsetAcceleration(t *testing.T) {
	game := mustGame(t, []string{
		"####",
		"#a #",
		"####",
	})

	before, _ := game.CarPosition(0)
	err := game.TakeTurn(Direction(0))
	if !errors.Is(err, ErrNoAcceleration) {
		t.Fatalf("expected ErrNoAcceleration, got %v", err)
	}

	after, _ := game.CarPosition(0)
	if before != after {
		t.Errorf("rejected turn changed position from %v to %v", before, after)
	}
	if vel, _ := game.CarVelocity(0); vel != (Vector{}) {
		t.Errorf("rejected turn changed velocity to %v", vel)
	}
}

func TestTakeTurnWallCrash(t *testing.T) {
	game := mustGame(t, []string{
		"#####",
		"#a  #",
		"#####",
	})

	takeTurns(t, game, Right, Right)

	car, _ := game.Track().Car(0)
	if !car.Crashed() {
		t.Fatal("expected car to crash into the wall")
	}
	if car.Position() != (Vector{X: 4, Y: 1}) {
		t.Errorf("expected crash position at the wall cell (4,1), got %v", car.Position())
	}
	// A lone crashed car leaves no winner.
	if game.Winner() != NoWinner {
		t.Errorf("expected no winner, got %d", game.Winner())
	}
	if car.MoveCount() != 1 {
		t.Errorf("expected 1 completed move before the crash, got %d", car.MoveCount())
	}
}

func TestTakeTurnCarCollision(t *testing.T) {
	game := mustGame(t, []string{
		"######",
		"#ab c#",
		"######",
	})

	// Car a accelerates straight into car b.
	takeTurns(t, game, Right)

	carA, _ := game.Track().Car(0)
	if !carA.Crashed() {
		t.Fatal("expected car a to crash into car b")
	}
	if carA.Position() != (Vector{X: 2, Y: 1}) {
		t.Errorf("expected crash at b's cell (2,1), got %v", carA.Position())
	}

	// Two active cars remain, so no sole-survivor winner.
	if game.Winner() != NoWinner {
		t.Errorf("expected no winner, got %d", game.Winner())
	}
}

func TestCrashedCarsDoNotCollide(t *testing.T) {
	game := mustGame(t, []string{
		"######",
		"#ab c#",
		"######",
	})

	carB, _ := game.Track().Car(1)
	carB.Crash(carB.Position())

	// Car a drives over the crashed car b without incident.
	takeTurns(t, game, Right)

	carA, _ := game.Track().Car(0)
	if carA.Crashed() {
		t.Fatal("expected car a to pass over the crashed car")
	}
	if carA.Position() != (Vector{X: 2, Y: 1}) {
		t.Errorf("expected position (2,1), got %v", carA.Position())
	}
}

func TestSoleSurvivorWins(t *testing.T) {
	game := mustGame(t, []string{
		"#####",
		"#a b#",
		"#####",
	})

	// a moves next to b, then crashes into it.
	takeTurns(t, game, Right, Right)

	carA, _ := game.Track().Car(0)
	if !carA.Crashed() {
		t.Fatal("expected car a to crash")
	}
	if game.Winner() != 1 {
		t.Errorf("expected car b (index 1) to win as sole survivor, got %d", game.Winner())
	}
}

func TestDirectWinCompletesMoveToTarget(t *testing.T) {
	game := mustGame(t, []string{
		"#########",
		"#a   >  #",
		"#########",
	})

	// Build up speed so the finish cell is crossed mid-path: the car ends
	// the winning move at its intended target, not on the finish cell.
	takeTurns(t, game, Right, Right, Right)

	if game.Winner() != 0 {
		t.Fatalf("expected winner 0, got %d", game.Winner())
	}
	pos, _ := game.CarPosition(0)
	if pos != (Vector{X: 7, Y: 1}) {
		t.Errorf("expected winner at intended target (7,1), got %v", pos)
	}
}

func TestWrongCrossingRequiresTwoCorrectCrossings(t *testing.T) {
	game := mustGame(t, []string{
		"#########",
		"#a <<   #",
		"#########",
	})

	// Cross both finish cells in the wrong direction.
	takeTurns(t, game, Right, Right)
	if game.Winner() != NoWinner {
		t.Fatalf("wrong-direction crossings must not win, got winner %d", game.Winner())
	}

	// Brake and come back: the first correct crossing alone must not win.
	takeTurns(t, game, Left, Left, Left)
	if game.Winner() != NoWinner {
		t.Fatalf("one correct crossing after a wrong one must not win, got winner %d", game.Winner())
	}

	// The second consecutive correct crossing wins.
	takeTurns(t, game, Left)
	if game.Winner() != 0 {
		t.Errorf("expected win after two consecutive correct crossings, got %d", game.Winner())
	}
}

func TestIncorrectCrossingResetsCorrectCount(t *testing.T) {
	game := mustGame(t, []string{
		"#####",
		"#a <#",
		"#####",
	})
	car, _ := game.Track().Car(0)
	record := game.crossings[car.ID()]

	// Simulate crossings directly against the finish rule.
	leftward := Vector{X: -1, Y: 0}
	rightward := Vector{X: 1, Y: 0}

	car.Accelerate(rightward)
	if won := game.resolveCrossing(car, SpaceFinishLeft); won {
		t.Fatal("wrong-direction crossing must not win")
	}
	if !record.hadIncorrect {
		t.Fatal("expected incorrect crossing to be recorded")
	}

	car.Accelerate(leftward)
	car.Accelerate(leftward) // velocity now leftward
	if won := game.resolveCrossing(car, SpaceFinishLeft); won {
		t.Fatal("first correct crossing after a wrong one must not win")
	}
	if record.consecutiveCorrect != 1 {
		t.Fatalf("expected correct count 1, got %d", record.consecutiveCorrect)
	}

	// An intervening wrong crossing resets the counter.
	car.Accelerate(rightward)
	car.Accelerate(rightward)
	if won := game.resolveCrossing(car, SpaceFinishLeft); won {
		t.Fatal("wrong-direction crossing must not win")
	}
	if record.consecutiveCorrect != 0 {
		t.Errorf("expected counter reset to 0, got %d", record.consecutiveCorrect)
	}

	// Two consecutive correct crossings now win.
	car.Accelerate(leftward)
	car.Accelerate(leftward)
	if won := game.resolveCrossing(car, SpaceFinishLeft); won {
		t.Fatal("expected no win on first correct crossing")
	}
	if won := game.resolveCrossing(car, SpaceFinishLeft); !won {
		t.Error("expected win on second consecutive correct crossing")
	}
}

func TestTurnsAfterWinnerAreNoOps(t *testing.T) {
	game := mustGame(t, []string{
		"#####",
		"#a >#",
		"#####",
	})

	takeTurns(t, game, Right, Right)
	if game.Winner() != 0 {
		t.Fatalf("expected winner 0, got %d", game.Winner())
	}

	pos, _ := game.CarPosition(0)
	vel, _ := game.CarVelocity(0)

	takeTurns(t, game, Right)

	posAfter, _ := game.CarPosition(0)
	velAfter, _ := game.CarVelocity(0)
	if pos != posAfter || vel != velAfter {
		t.Errorf("turn after win changed state: pos %v->%v vel %v->%v", pos, posAfter, vel, velAfter)
	}
}

func TestSwitchToNextActiveCar(t *testing.T) {
	game := mustGame(t, []string{
		"#######",
		"#a b c#",
		"#######",
	})

	game.SwitchToNextActiveCar()
	if game.CurrentCarIndex() != 1 {
		t.Fatalf("expected current car 1, got %d", game.CurrentCarIndex())
	}

	// Crash car c; rotation from b skips it and wraps to a.
	carC, _ := game.Track().Car(2)
	carC.Crash(carC.Position())
	game.SwitchToNextActiveCar()
	if game.CurrentCarIndex() != 0 {
		t.Fatalf("expected rotation to skip crashed car and wrap to 0, got %d", game.CurrentCarIndex())
	}

	// With every car crashed, the index stays put.
	carA, _ := game.Track().Car(0)
	carB, _ := game.Track().Car(1)
	carA.Crash(carA.Position())
	carB.Crash(carB.Position())
	game.SwitchToNextActiveCar()
	if game.CurrentCarIndex() != 0 {
		t.Errorf("expected index unchanged with all cars crashed, got %d", game.CurrentCarIndex())
	}
}

func TestNextCarMoveErrors(t *testing.T) {
	game := mustGame(t, []string{
		"####",
		"#a #",
		"####",
	})

	if _, err := game.NextCarMove(0); !errors.Is(err, ErrNoStrategy) {
		t.Errorf("expected ErrNoStrategy, got %v", err)
	}
	if _, err := game.NextCarMove(5); !errors.Is(err, ErrInvalidCarIndex) {
		t.Errorf("expected ErrInvalidCarIndex, got %v", err)
	}
	if err := game.SetMoveStrategy(5, nil); !errors.Is(err, ErrInvalidCarIndex) {
		t.Errorf("expected ErrInvalidCarIndex, got %v", err)
	}
}

func TestGameStateSnapshot(t *testing.T) {
	game := mustGame(t, []string{
		"#####",
		"#a b#",
		"#####",
	})

	state := game.State()
	if state.Width != 5 || state.Height != 3 {
		t.Errorf("expected 5x3 snapshot, got %dx%d", state.Width, state.Height)
	}
	if len(state.Cars) != 2 {
		t.Fatalf("expected 2 cars in snapshot, got %d", len(state.Cars))
	}
	if state.Winner != NoWinner || state.Finished {
		t.Errorf("expected unfinished race, got winner %d finished %v", state.Winner, state.Finished)
	}
	if state.Cars[0].ID != "a" {
		t.Errorf("expected car id a, got %s", state.Cars[0].ID)
	}
}
