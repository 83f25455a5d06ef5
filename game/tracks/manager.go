// Package tracks loads the track library from a directory of track files.
// It implements service.TrackManager. Raw file lines are cached; every Load
// builds a fresh Track because tracks carry mutable car state.
package tracks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mwegmann/gridrace/game/engine"
	"github.com/mwegmann/gridrace/game/service"
)

// ErrTrackNotFound reports a track name with no file in the library.
var ErrTrackNotFound = errors.New("track not found")

const trackExtension = ".txt"

// Manager handles track file loading and caching.
type Manager struct {
	trackDir string
	lines    map[string][]string
	mu       sync.RWMutex
}

// NewManager creates a track manager for the given directory.
func NewManager(trackDir string) (*Manager, error) {
	if _, err := os.Stat(trackDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("track directory does not exist: %s", trackDir)
	}

	return &Manager{
		trackDir: trackDir,
		lines:    make(map[string][]string),
	}, nil
}

// Load builds a fresh track from the named file. The file's raw lines are
// cached after the first read.
func (m *Manager) Load(name string) (*engine.Track, error) {
	m.mu.RLock()
	lines, exists := m.lines[name]
	m.mu.RUnlock()
	if exists {
		return engine.NewTrack(lines)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if lines, exists := m.lines[name]; exists {
		return engine.NewTrack(lines)
	}

	lines, err := m.readLines(name)
	if err != nil {
		return nil, err
	}

	// Validate before caching so a broken file is reported on every Load.
	track, err := engine.NewTrack(lines)
	if err != nil {
		return nil, err
	}

	m.lines[name] = lines
	return track, nil
}

// List returns information about every valid track in the library.
// Files that fail validation are skipped.
func (m *Manager) List() ([]*service.TrackInfo, error) {
	entries, err := os.ReadDir(m.trackDir)
	if err != nil {
		return nil, fmt.Errorf("reading track directory: %w", err)
	}

	var infos []*service.TrackInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), trackExtension) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), trackExtension)
		track, err := m.Load(name)
		if err != nil {
			continue
		}

		infos = append(infos, &service.TrackInfo{
			Filename:    entry.Name(),
			Name:        name,
			Width:       track.Width(),
			Height:      track.Height(),
			CarCount:    track.CarCount(),
			FinishCells: countFinishCells(track),
		})
	}

	return infos, nil
}

// RefreshCache drops all cached track lines.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = make(map[string][]string)
}

// readLines reads and parses the track block from the named file.
func (m *Manager) readLines(name string) ([]string, error) {
	filename := name
	if !strings.HasSuffix(filename, trackExtension) {
		filename += trackExtension
	}

	f, err := os.Open(filepath.Join(m.trackDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, name)
		}
		return nil, fmt.Errorf("reading track file: %w", err)
	}
	defer f.Close()

	return engine.ReadTrackLines(f)
}

// countFinishCells counts the finish cells on a track.
func countFinishCells(track *engine.Track) int {
	count := 0
	for y := 0; y < track.Height(); y++ {
		for x := 0; x < track.Width(); x++ {
			if track.SpaceTypeAt(engine.Vector{X: x, Y: y}).IsFinish() {
				count++
			}
		}
	}
	return count
}
