// Package api exposes the race service as a REST API with a WebSocket
// endpoint for live race updates.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mwegmann/gridrace/game/engine"
	"github.com/mwegmann/gridrace/game/service"
	"github.com/mwegmann/gridrace/game/session"
	"github.com/mwegmann/gridrace/game/tracks"
	"github.com/mwegmann/gridrace/transport/websocket"
)

// Server represents the REST API server.
type Server struct {
	service service.RaceService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server.
func NewServer(raceService service.RaceService, hub *websocket.Hub) *Server {
	s := &Server{
		service: raceService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Race lifecycle
	api.HandleFunc("/races", s.handleCreateRace).Methods("POST")
	api.HandleFunc("/races", s.handleListRaces).Methods("GET")
	api.HandleFunc("/races/{id}", s.handleGetRace).Methods("GET")
	api.HandleFunc("/races/{id}", s.handleDeleteRace).Methods("DELETE")

	// Turn resolution
	api.HandleFunc("/races/{id}/state", s.handleGetRaceState).Methods("GET")
	api.HandleFunc("/races/{id}/turn", s.handlePlayTurn).Methods("POST")
	api.HandleFunc("/races/{id}/autoplay", s.handleAutoplay).Methods("POST")

	// Track library
	api.HandleFunc("/tracks", s.handleListTracks).Methods("GET")
	api.HandleFunc("/tracks/{name}", s.handleGetTrack).Methods("GET")
	api.HandleFunc("/tracks/{name}/plan", s.handleSolvePlan).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	var formatErr *engine.FormatError
	switch {
	case errors.Is(err, session.ErrRaceNotFound), errors.Is(err, tracks.ErrTrackNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRaceFinished):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnknownStrategy), errors.As(err, &formatErr):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// Race Handlers

func (s *Server) handleCreateRace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Track      string   `json:"track"`
		Strategies []string `json:"strategies,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Track == "" {
		respondError(w, http.StatusBadRequest, "track is required")
		return
	}

	race, err := s.service.CreateRace(r.Context(), req.Track, req.Strategies)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, race)
}

func (s *Server) handleListRaces(w http.ResponseWriter, r *http.Request) {
	races, err := s.service.ListRaces(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default: "desc")

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(races, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = races[i].CreatedAt, races[j].CreatedAt
		} else {
			ti, tj = races[i].LastAccessedAt, races[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	limit := len(races)
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(races) {
			limit = l
		}
	}
	races = races[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(races),
		"races": races,
		"sort":  sortBy,
		"order": order,
	})
}

func (s *Server) handleGetRace(w http.ResponseWriter, r *http.Request) {
	raceID := mux.Vars(r)["id"]

	race, err := s.service.GetRace(r.Context(), raceID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, race)
}

func (s *Server) handleDeleteRace(w http.ResponseWriter, r *http.Request) {
	raceID := mux.Vars(r)["id"]

	if err := s.service.DeleteRace(r.Context(), raceID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Race %s deleted", raceID),
	})
}

// Turn Handlers

func (s *Server) handleGetRaceState(w http.ResponseWriter, r *http.Request) {
	raceID := mux.Vars(r)["id"]

	state, err := s.service.GetRaceState(r.Context(), raceID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handlePlayTurn(w http.ResponseWriter, r *http.Request) {
	raceID := mux.Vars(r)["id"]

	result, err := s.service.PlayTurn(r.Context(), raceID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToRace(raceID, result.State)
	}

	log.Printf("[TURN] race=%s turn=%d car=%s move=%s crashed=%v winner=%d",
		raceID, result.Turn, result.CarID, result.Move, result.Crashed, result.Winner)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAutoplay(w http.ResponseWriter, r *http.Request) {
	raceID := mux.Vars(r)["id"]

	var req struct {
		MaxTurns int `json:"max_turns,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.service.Autoplay(r.Context(), raceID, req.MaxTurns)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToRace(raceID, result.State)
	}

	log.Printf("[AUTOPLAY] race=%s turns=%d finished=%v winner=%d truncated=%v",
		raceID, result.TurnsPlayed, result.Finished, result.Winner, result.Truncated)

	respondJSON(w, http.StatusOK, result)
}

// Track Handlers

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.service.ListTracks(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, tracks)
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	trackName := mux.Vars(r)["name"]

	track, err := s.service.GetTrack(r.Context(), trackName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, track)
}

func (s *Server) handleSolvePlan(w http.ResponseWriter, r *http.Request) {
	trackName := mux.Vars(r)["name"]

	carIndex := 0
	if carStr := r.URL.Query().Get("car"); carStr != "" {
		c, err := strconv.Atoi(carStr)
		if err != nil || c < 0 {
			respondError(w, http.StatusBadRequest, "car must be a non-negative integer")
			return
		}
		carIndex = c
	}

	result, err := s.service.SolvePlan(r.Context(), trackName, carIndex)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidCarIndex) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	raceID := r.URL.Query().Get("race")
	if raceID == "" {
		http.Error(w, "race parameter required", http.StatusBadRequest)
		return
	}

	// Verify the race exists before upgrading
	if _, err := s.service.GetRace(r.Context(), raceID); err != nil {
		http.Error(w, "Invalid race", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, raceID)
}

// Health check

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
