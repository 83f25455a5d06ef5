package strategy

import (
	"testing"

	"github.com/mwegmann/gridrace/game/engine"
)

func TestDoNotMove(t *testing.T) {
	s := NewDoNotMove()
	for i := 0; i < 3; i++ {
		if got := s.NextMove(); got != engine.None {
			t.Errorf("expected NONE, got %v", got)
		}
	}
}
