package engine

// Line returns the ordered grid cells a straight move from start to end
// passes through, including both endpoints. It implements the symmetric
// error-accumulation variant of Bresenham's algorithm: the axis with the
// greater absolute distance is stepped every iteration, the other only when
// the error term underflows. The result always contains exactly
// max(|dx|,|dy|)+1 points, and reversing start and end yields the same
// cells in reverse order. Integer arithmetic only.
func Line(start, end Vector) []Vector {
	diff := end.Sub(start)
	dist := diff.Abs()
	dir := diff.Sign()

	var parallelStep, diagonalStep Vector
	var distSlow, distFast int
	if dist.X > dist.Y {
		// x is the fast axis
		parallelStep = Vector{X: dir.X}
		diagonalStep = dir
		distSlow, distFast = dist.Y, dist.X
	} else {
		// y is the fast axis
		parallelStep = Vector{Y: dir.Y}
		diagonalStep = dir
		distSlow, distFast = dist.X, dist.Y
	}

	cells := make([]Vector, 0, distFast+1)
	cells = append(cells, start)

	pos := start
	err := distFast / 2
	for step := 0; step < distFast; step++ {
		err -= distSlow
		if err < 0 {
			err += distFast
			pos = pos.Add(diagonalStep)
		} else {
			pos = pos.Add(parallelStep)
		}
		cells = append(cells, pos)
	}

	return cells
}
