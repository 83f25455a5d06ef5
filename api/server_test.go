package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwegmann/gridrace/game/service"
	"github.com/mwegmann/gridrace/game/session"
	"github.com/mwegmann/gridrace/game/tracks"
	"github.com/mwegmann/gridrace/transport/websocket"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	sprint := "#######\n#a   >#\n#######\n"
	if err := os.WriteFile(filepath.Join(dir, "sprint.txt"), []byte(sprint), 0644); err != nil {
		t.Fatalf("failed to write track: %v", err)
	}

	trackMgr, err := tracks.NewManager(dir)
	if err != nil {
		t.Fatalf("failed to create track manager: %v", err)
	}
	raceService := service.NewRaceService(session.NewManager(), trackMgr)

	hub := websocket.NewHub()
	go hub.Run()

	return NewServer(raceService, hub)
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func createRace(t *testing.T, server *Server) string {
	t.Helper()

	rec := doJSON(t, server, http.MethodPost, "/api/races", map[string]interface{}{"track": "sprint"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var race service.RaceInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &race); err != nil {
		t.Fatalf("failed to decode race: %v", err)
	}
	if race.ID == "" {
		t.Fatal("expected a race id")
	}
	return race.ID
}

func TestCreateAndGetRace(t *testing.T) {
	server := newTestServer(t)
	raceID := createRace(t, server)

	rec := doJSON(t, server, http.MethodGet, "/api/races/"+raceID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var race service.RaceInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &race); err != nil {
		t.Fatalf("failed to decode race: %v", err)
	}
	if race.TrackName != "sprint" {
		t.Errorf("expected track sprint, got %s", race.TrackName)
	}
}

func TestCreateRaceValidation(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/races", map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing track, got %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/races", map[string]interface{}{
		"track":      "sprint",
		"strategies": []string{"teleport"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown strategy, got %d", rec.Code)
	}
}

func TestGetRaceNotFound(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/races/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestPlayTurnAndState(t *testing.T) {
	server := newTestServer(t)
	raceID := createRace(t, server)

	rec := doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/races/%s/turn", raceID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.TurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode turn result: %v", err)
	}
	if result.Turn != 1 || result.CarID != "a" {
		t.Errorf("unexpected turn result: %+v", result)
	}

	rec = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/races/%s/state", raceID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAutoplayFinishesRace(t *testing.T) {
	server := newTestServer(t)
	raceID := createRace(t, server)

	rec := doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/races/%s/autoplay", raceID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.AutoplayResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode autoplay result: %v", err)
	}
	if !result.Finished || result.WinnerID != "a" {
		t.Errorf("expected car a to win, got %+v", result)
	}

	// A finished race rejects further turns with a conflict.
	rec = doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/races/%s/turn", raceID), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 after finish, got %d", rec.Code)
	}
}

func TestDeleteRace(t *testing.T) {
	server := newTestServer(t)
	raceID := createRace(t, server)

	rec := doJSON(t, server, http.MethodDelete, "/api/races/"+raceID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/api/races/"+raceID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestListTracksAndPlan(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/tracks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var infos []*service.TrackInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("failed to decode tracks: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "sprint" {
		t.Fatalf("unexpected track list: %+v", infos)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/tracks/sprint/plan?car=0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var plan service.PlanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("failed to decode plan: %v", err)
	}
	if !plan.Found || plan.Length == 0 {
		t.Errorf("expected a plan, got %+v", plan)
	}
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
