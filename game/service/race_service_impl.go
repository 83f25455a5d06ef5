package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mwegmann/gridrace/game/engine"
	"github.com/mwegmann/gridrace/game/strategy"
)

var (
	// ErrUnknownStrategy reports a strategy name CreateRace does not accept.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrRaceFinished reports a turn request on a race that already has a
	// winner or no active cars left.
	ErrRaceFinished = errors.New("race already finished")
)

// MaxAutoplayTurns caps an autoplay run when the caller does not set a
// limit, so a race of coasting cars cannot spin forever.
const MaxAutoplayTurns = 1000

// raceServiceImpl implements the RaceService interface.
type raceServiceImpl struct {
	sessions SessionManager
	tracks   TrackManager
	mu       sync.RWMutex
}

// NewRaceService creates a new race service instance.
func NewRaceService(sessions SessionManager, tracks TrackManager) RaceService {
	return &raceServiceImpl{
		sessions: sessions,
		tracks:   tracks,
	}
}

// CreateRace loads the named track, builds a turn engine, and assigns one
// strategy per car. Missing entries default to the path finder; a car whose
// path search fails falls back to holding still, recorded as a warning on
// the session rather than failing the race.
func (s *raceServiceImpl) CreateRace(ctx context.Context, trackName string, strategies []string) (*RaceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, err := s.tracks.Load(trackName)
	if err != nil {
		return nil, fmt.Errorf("loading track %s: %w", trackName, err)
	}
	game, err := engine.NewGame(track)
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}

	if len(strategies) > game.CarCount() {
		return nil, fmt.Errorf("%d strategies given for %d cars", len(strategies), game.CarCount())
	}

	sess, err := s.sessions.Create(game, trackName)
	if err != nil {
		return nil, fmt.Errorf("creating race session: %w", err)
	}

	for i := 0; i < game.CarCount(); i++ {
		name := StrategyPathFinder
		if i < len(strategies) && strategies[i] != "" {
			name = strategies[i]
		}

		applied, moveStrategy, err := s.buildStrategy(game, i, name)
		if err != nil {
			s.sessions.Delete(sess.ID)
			return nil, err
		}
		if applied != name {
			carID, _ := game.CarID(i)
			sess.Warnings = append(sess.Warnings,
				fmt.Sprintf("car %s: path search found no winning plan, falling back to %s", string(carID), applied))
		}

		sess.Strategies = append(sess.Strategies, applied)
		game.SetMoveStrategy(i, moveStrategy)
	}

	return raceInfo(sess), nil
}

// buildStrategy constructs the named strategy for a car and returns the
// name actually applied, which differs only on path-search fallback.
func (s *raceServiceImpl) buildStrategy(game *engine.Game, carIndex int, name string) (string, engine.MoveStrategy, error) {
	switch name {
	case StrategyDoNotMove:
		return name, strategy.NewDoNotMove(), nil
	case StrategyPathFinder:
		finder, err := strategy.NewPathFinder(game, carIndex)
		if err != nil {
			if errors.Is(err, strategy.ErrSearchExhausted) {
				return StrategyDoNotMove, strategy.NewDoNotMove(), nil
			}
			return "", nil, fmt.Errorf("building path finder for car %d: %w", carIndex, err)
		}
		return name, finder, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// GetRace retrieves information about a race.
func (s *raceServiceImpl) GetRace(ctx context.Context, raceID string) (*RaceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(raceID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(raceID)

	return raceInfo(sess), nil
}

// ListRaces returns all active races.
func (s *raceServiceImpl) ListRaces(ctx context.Context) ([]*RaceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*RaceInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, raceInfo(sess))
	}
	return result, nil
}

// DeleteRace removes a race session.
func (s *raceServiceImpl) DeleteRace(ctx context.Context, raceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(raceID)
}

// PlayTurn resolves one turn for the race's active car: it asks the car's
// strategy for an acceleration, hands it to the turn engine, and rotates to
// the next active car.
func (s *raceServiceImpl) PlayTurn(ctx context.Context, raceID string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(raceID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(raceID)

	result, err := s.playTurn(sess)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// playTurn resolves one turn on a locked session.
func (s *raceServiceImpl) playTurn(sess *RaceSession) (*TurnResult, error) {
	game := sess.Game
	if game.Winner() != engine.NoWinner || countActive(game) == 0 {
		return nil, ErrRaceFinished
	}

	carIndex := game.CurrentCarIndex()
	carID, _ := game.CarID(carIndex)
	move, err := game.NextCarMove(carIndex)
	if err != nil {
		return nil, fmt.Errorf("asking strategy for a move: %w", err)
	}
	if err := game.TakeTurn(move); err != nil {
		return nil, fmt.Errorf("resolving turn: %w", err)
	}
	game.SwitchToNextActiveCar()
	sess.Turns++

	car, _ := game.Track().Car(carIndex)
	return &TurnResult{
		RaceID:   sess.ID,
		Turn:     sess.Turns,
		CarIndex: carIndex,
		CarID:    string(carID),
		Move:     move.String(),
		Crashed:  car.Crashed(),
		Winner:   game.Winner(),
		Finished: game.Winner() != engine.NoWinner || countActive(game) == 0,
		State:    game.State(),
	}, nil
}

// Autoplay resolves turns until the race finishes or the turn limit is
// reached. A maxTurns of zero or less applies the default cap.
func (s *raceServiceImpl) Autoplay(ctx context.Context, raceID string, maxTurns int) (*AutoplayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(raceID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(raceID)

	if maxTurns <= 0 || maxTurns > MaxAutoplayTurns {
		maxTurns = MaxAutoplayTurns
	}

	game := sess.Game
	result := &AutoplayResult{RaceID: sess.ID}
	for i := 0; i < maxTurns; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if game.Winner() != engine.NoWinner || countActive(game) == 0 {
			break
		}
		if _, err := s.playTurn(sess); err != nil {
			return nil, err
		}
		result.TurnsPlayed++
	}

	result.Winner = game.Winner()
	result.Finished = game.Winner() != engine.NoWinner || countActive(game) == 0
	result.Truncated = !result.Finished && result.TurnsPlayed == maxTurns
	if result.Winner != engine.NoWinner {
		winnerID, _ := game.CarID(result.Winner)
		result.WinnerID = string(winnerID)
	}
	result.State = game.State()
	return result, nil
}

// GetRaceState returns a snapshot of the race.
func (s *raceServiceImpl) GetRaceState(ctx context.Context, raceID string) (*engine.RaceState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(raceID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(raceID)

	return sess.Game.State(), nil
}

// ListTracks returns the track library.
func (s *raceServiceImpl) ListTracks(ctx context.Context) ([]*TrackInfo, error) {
	return s.tracks.List()
}

// GetTrack returns information about one track.
func (s *raceServiceImpl) GetTrack(ctx context.Context, trackName string) (*TrackInfo, error) {
	infos, err := s.tracks.List()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Name == trackName {
			return info, nil
		}
	}
	return nil, fmt.Errorf("track %s not found", trackName)
}

// SolvePlan runs the path search for one car on a fresh copy of the named
// track, without creating a race.
func (s *raceServiceImpl) SolvePlan(ctx context.Context, trackName string, carIndex int) (*PlanResult, error) {
	track, err := s.tracks.Load(trackName)
	if err != nil {
		return nil, fmt.Errorf("loading track %s: %w", trackName, err)
	}
	game, err := engine.NewGame(track)
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}

	result := &PlanResult{TrackName: trackName, CarIndex: carIndex}
	finder, err := strategy.NewPathFinder(game, carIndex)
	if err != nil {
		if errors.Is(err, strategy.ErrSearchExhausted) {
			result.Reason = err.Error()
			return result, nil
		}
		return nil, err
	}

	result.Found = true
	for _, move := range finder.Plan() {
		result.Moves = append(result.Moves, move.String())
	}
	result.Length = len(result.Moves)
	return result, nil
}

// raceInfo builds the API view of a session.
func raceInfo(sess *RaceSession) *RaceInfo {
	return &RaceInfo{
		ID:             sess.ID,
		TrackName:      sess.TrackName,
		Strategies:     sess.Strategies,
		Warnings:       sess.Warnings,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Turns:          sess.Turns,
		State:          sess.Game.State(),
	}
}

// countActive returns the number of non-crashed cars.
func countActive(game *engine.Game) int {
	active := 0
	for i := 0; i < game.CarCount(); i++ {
		car, _ := game.Track().Car(i)
		if !car.Crashed() {
			active++
		}
	}
	return active
}
