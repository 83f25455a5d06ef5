package engine

// CarState is a serializable snapshot of one car.
type CarState struct {
	ID        string `json:"id"`
	Position  Vector `json:"position"`
	Velocity  Vector `json:"velocity"`
	Crashed   bool   `json:"crashed"`
	MoveCount int    `json:"move_count"`
}

// RaceState is a serializable snapshot of the whole race, used by the API
// and WebSocket layers. It copies the live state; mutating it never
// affects the game.
type RaceState struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Rendering  string     `json:"rendering"`
	Cars       []CarState `json:"cars"`
	CurrentCar int        `json:"current_car"`
	Winner     int        `json:"winner"`
	Finished   bool       `json:"finished"`
}

// State captures the current race state as a snapshot. The race counts as
// finished when a winner exists or every car has crashed.
func (g *Game) State() *RaceState {
	state := &RaceState{
		Width:      g.track.Width(),
		Height:     g.track.Height(),
		Rendering:  g.track.String(),
		Cars:       make([]CarState, 0, g.track.CarCount()),
		CurrentCar: g.current,
		Winner:     g.winner,
	}

	allCrashed := true
	for i := 0; i < g.track.CarCount(); i++ {
		car, _ := g.track.Car(i)
		if !car.Crashed() {
			allCrashed = false
		}
		state.Cars = append(state.Cars, CarState{
			ID:        string(car.ID()),
			Position:  car.Position(),
			Velocity:  car.Velocity(),
			Crashed:   car.Crashed(),
			MoveCount: car.MoveCount(),
		})
	}
	state.Finished = g.winner != NoWinner || allCrashed

	return state
}
