package engine

import "testing"

func TestCarAccelerateAndMove(t *testing.T) {
	car := NewCar('a', Vector{X: 2, Y: 3})

	car.Accelerate(Vector{X: 1, Y: 0})
	car.Accelerate(Vector{X: 1, Y: -1})
	if car.Velocity() != (Vector{X: 2, Y: -1}) {
		t.Errorf("expected velocity (2,-1), got %v", car.Velocity())
	}

	if car.NextPosition() != (Vector{X: 4, Y: 2}) {
		t.Errorf("expected next position (4,2), got %v", car.NextPosition())
	}
	// NextPosition must not mutate.
	if car.Position() != (Vector{X: 2, Y: 3}) {
		t.Errorf("NextPosition changed position to %v", car.Position())
	}

	car.Move()
	if car.Position() != (Vector{X: 4, Y: 2}) {
		t.Errorf("expected position (4,2) after move, got %v", car.Position())
	}
	if car.MoveCount() != 1 {
		t.Errorf("expected move count 1, got %d", car.MoveCount())
	}
}

func TestCarVelocityAccumulatesUnbounded(t *testing.T) {
	car := NewCar('a', Vector{})
	for i := 0; i < 5; i++ {
		car.Accelerate(Vector{X: 1, Y: 1})
	}
	if car.Velocity() != (Vector{X: 5, Y: 5}) {
		t.Errorf("expected velocity (5,5), got %v", car.Velocity())
	}
}

func TestCarCrashIsOneWay(t *testing.T) {
	car := NewCar('a', Vector{X: 1, Y: 1})
	if car.Crashed() {
		t.Fatal("new car should not be crashed")
	}

	crashPos := Vector{X: 4, Y: 1}
	car.Crash(crashPos)

	if !car.Crashed() {
		t.Error("expected car to be crashed")
	}
	if car.Position() != crashPos {
		t.Errorf("expected crash position %v, got %v", crashPos, car.Position())
	}
	if car.MoveCount() != 0 {
		t.Errorf("crash must not count as a move, got count %d", car.MoveCount())
	}
}
