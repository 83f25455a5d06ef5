package engine

// Car is a vehicle on the track. It keeps its current position and
// velocity, a one-way crashed flag, and a counter of completed moves.
// Cars are created by the track parser, one per start marker, and are
// mutated only through Accelerate, Move, and Crash.
type Car struct {
	id        byte
	position  Vector
	velocity  Vector
	crashed   bool
	moveCount int
}

// NewCar creates a car with the given id at the start position, standing
// still.
func NewCar(id byte, start Vector) *Car {
	return &Car{id: id, position: start}
}

// ID returns the car's identifier character.
func (c *Car) ID() byte {
	return c.id
}

// Position returns the car's current position.
func (c *Car) Position() Vector {
	return c.position
}

// Velocity returns the car's current velocity.
func (c *Car) Velocity() Vector {
	return c.velocity
}

// NextPosition returns the endpoint of the car's next move without
// changing its state.
func (c *Car) NextPosition() Vector {
	return c.position.Add(c.velocity)
}

// Accelerate adds the given acceleration vector to the car's velocity.
// The caller's vocabulary restricts components to {-1,0,1}; the velocity
// itself accumulates without bound.
func (c *Car) Accelerate(acceleration Vector) {
	c.velocity = c.velocity.Add(acceleration)
}

// Move advances the car by its current velocity and increments the move
// counter.
func (c *Car) Move() {
	c.position = c.position.Add(c.velocity)
	c.moveCount++
}

// MoveCount returns the number of successful non-crashing advances.
func (c *Car) MoveCount() int {
	return c.moveCount
}

// Crash marks the car as crashed at the given position. The flag cannot
// be reverted.
func (c *Car) Crash(at Vector) {
	c.position = at
	c.crashed = true
}

// Crashed reports whether the car has crashed.
func (c *Car) Crashed() bool {
	return c.crashed
}
