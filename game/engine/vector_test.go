package engine

import "testing"

func TestVectorArithmetic(t *testing.T) {
	a := Vector{X: 3, Y: -4}
	b := Vector{X: -1, Y: 2}

	if got := a.Add(b); got != (Vector{X: 2, Y: -2}) {
		t.Errorf("Add: expected (2,-2), got %v", got)
	}
	if got := a.Sub(b); got != (Vector{X: 4, Y: -6}) {
		t.Errorf("Sub: expected (4,-6), got %v", got)
	}
	if got := a.Abs(); got != (Vector{X: 3, Y: 4}) {
		t.Errorf("Abs: expected (3,4), got %v", got)
	}
	if got := a.Dot(b); got != -11 {
		t.Errorf("Dot: expected -11, got %d", got)
	}
}

func TestVectorSign(t *testing.T) {
	tests := []struct {
		name     string
		in       Vector
		expected Vector
	}{
		{"positive", Vector{X: 5, Y: 3}, Vector{X: 1, Y: 1}},
		{"negative", Vector{X: -2, Y: -7}, Vector{X: -1, Y: -1}},
		{"zero", Vector{}, Vector{}},
		{"mixed", Vector{X: -4, Y: 0}, Vector{X: -1, Y: 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.in.Sign(); got != test.expected {
				t.Errorf("Sign(%v): expected %v, got %v", test.in, test.expected, got)
			}
		})
	}
}

func TestVectorValueEquality(t *testing.T) {
	// Vectors must be usable as map keys with structural equality.
	seen := map[Vector]int{}
	seen[Vector{X: 1, Y: 2}] = 1
	seen[Vector{X: 1, Y: 2}] = 2

	if len(seen) != 1 {
		t.Errorf("expected equal vectors to collapse to one map key, got %d", len(seen))
	}
}

func TestVectorString(t *testing.T) {
	v := Vector{X: -3, Y: 12}
	if got := v.String(); got != "(X:-3, Y:12)" {
		t.Errorf("String: expected (X:-3, Y:12), got %s", got)
	}
}

func TestParseVector(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected Vector
		wantErr  bool
	}{
		{"simple", "(X:1, Y:2)", Vector{X: 1, Y: 2}, false},
		{"negative x", "(X:-4, Y:7)", Vector{X: -4, Y: 7}, false},
		{"negative both", "(X:-4, Y:-7)", Vector{X: -4, Y: -7}, false},
		{"lowercase axes", "(x:3, y:5)", Vector{X: 3, Y: 5}, false},
		{"no space", "(X:1,Y:2)", Vector{X: 1, Y: 2}, false},
		{"garbage", "1,2", Vector{}, true},
		{"missing paren", "X:1, Y:2)", Vector{}, true},
		{"empty", "", Vector{}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseVector(test.in)
			if test.wantErr {
				if err == nil {
					t.Errorf("ParseVector(%q): expected error, got %v", test.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVector(%q): unexpected error: %v", test.in, err)
			}
			if got != test.expected {
				t.Errorf("ParseVector(%q): expected %v, got %v", test.in, test.expected, got)
			}
		})
	}
}
