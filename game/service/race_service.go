package service

import (
	"context"
	"time"

	"github.com/mwegmann/gridrace/game/engine"
)

// Strategy names accepted by CreateRace and reported in RaceInfo.
const (
	StrategyDoNotMove  = "do_not_move"
	StrategyPathFinder = "path_finder"
)

// RaceService defines all race-related operations.
type RaceService interface {
	// Race lifecycle
	CreateRace(ctx context.Context, trackName string, strategies []string) (*RaceInfo, error)
	GetRace(ctx context.Context, raceID string) (*RaceInfo, error)
	ListRaces(ctx context.Context) ([]*RaceInfo, error)
	DeleteRace(ctx context.Context, raceID string) error

	// Turn resolution
	PlayTurn(ctx context.Context, raceID string) (*TurnResult, error)
	Autoplay(ctx context.Context, raceID string, maxTurns int) (*AutoplayResult, error)
	GetRaceState(ctx context.Context, raceID string) (*engine.RaceState, error)

	// Track library
	ListTracks(ctx context.Context) ([]*TrackInfo, error)
	GetTrack(ctx context.Context, trackName string) (*TrackInfo, error)

	// Planning
	SolvePlan(ctx context.Context, trackName string, carIndex int) (*PlanResult, error)
}

// SessionManager defines race session storage operations.
type SessionManager interface {
	Create(game *engine.Game, trackName string) (*RaceSession, error)
	Get(id string) (*RaceSession, error)
	List() []*RaceSession
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// TrackManager loads tracks from the track library. Load returns a fresh
// Track on every call; tracks carry mutable car state, so races must never
// share one.
type TrackManager interface {
	Load(name string) (*engine.Track, error)
	List() ([]*TrackInfo, error)
}

// RaceSession is one active race: the turn engine plus bookkeeping.
type RaceSession struct {
	ID             string
	TrackName      string
	Game           *engine.Game
	Strategies     []string
	Warnings       []string
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Turns          int
}
