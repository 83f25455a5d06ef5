package service

import (
	"time"

	"github.com/mwegmann/gridrace/game/engine"
)

// RaceInfo provides information about a race session.
type RaceInfo struct {
	ID             string             `json:"id"`
	TrackName      string             `json:"track_name"`
	Strategies     []string           `json:"strategies"`
	Warnings       []string           `json:"warnings,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Turns          int                `json:"turns"`
	State          *engine.RaceState  `json:"state"`
}

// TurnResult contains the outcome of a single resolved turn.
type TurnResult struct {
	RaceID   string            `json:"race_id"`
	Turn     int               `json:"turn"`
	CarIndex int               `json:"car_index"`
	CarID    string            `json:"car_id"`
	Move     string            `json:"move"`
	Crashed  bool              `json:"crashed"`
	Winner   int               `json:"winner"`
	Finished bool              `json:"finished"`
	State    *engine.RaceState `json:"state"`
}

// AutoplayResult contains the outcome of an autoplay run.
type AutoplayResult struct {
	RaceID      string            `json:"race_id"`
	TurnsPlayed int               `json:"turns_played"`
	Truncated   bool              `json:"truncated,omitempty"`
	Winner      int               `json:"winner"`
	WinnerID    string            `json:"winner_id,omitempty"`
	Finished    bool              `json:"finished"`
	State       *engine.RaceState `json:"state"`
}

// PlanResult contains the outcome of a path search on a track.
type PlanResult struct {
	TrackName string   `json:"track_name"`
	CarIndex  int      `json:"car_index"`
	Found     bool     `json:"found"`
	Reason    string   `json:"reason,omitempty"`
	Moves     []string `json:"moves,omitempty"`
	Length    int      `json:"length"`
}

// TrackInfo provides information about one track in the library.
type TrackInfo struct {
	Filename    string `json:"filename"`
	Name        string `json:"name"` // identifier used for race creation
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CarCount    int    `json:"car_count"`
	FinishCells int    `json:"finish_cells"`
}
