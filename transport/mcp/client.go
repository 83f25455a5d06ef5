// Package mcp exposes the race API to MCP clients. It is a thin client
// that proxies every tool call to the REST API and renders the responses
// as plain text.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mwegmann/gridrace/game/engine"
	"github.com/mwegmann/gridrace/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Race",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Race - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Cars race on an ASCII track. Each turn a car adjusts its velocity by at
most one cell per axis, then slides along the resulting straight line.
Hitting a wall or another active car crashes the car. Crossing a finish
line in the correct direction wins the race.

AVAILABLE TOOLS:
- create_race: Start a race on a named track
- list_races: List all active races
- get_race: Get details of one race
- race_state: Get the current board and car states
- play_turn: Resolve the next car's turn
- autoplay: Run the race until it finishes
- list_tracks: List available tracks
- solve_plan: Run the path search on a track and show the plan
- race_rules: Get the full rules of the game`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Race lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_race",
		Description: "Create a new race on a named track with optional per-car strategies",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"track": map[string]interface{}{
					"type":        "string",
					"description": "Name of the track to race on (see list_tracks)",
				},
				"strategies": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"path_finder", "do_not_move"},
					},
					"description": "Strategy per car in track order (optional, defaults to path_finder)",
				},
			},
			Required: []string{"track"},
		},
	}, c.handleCreateRace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_races",
		Description: "List all active races",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRaces)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_race",
		Description: "Get details of a specific race",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"race_id": map[string]interface{}{
					"type":        "string",
					"description": "Race ID to retrieve",
				},
			},
			Required: []string{"race_id"},
		},
	}, c.handleGetRace)

	// Race play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "race_state",
		Description: "Get the current race state including the rendered board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"race_id": map[string]interface{}{
					"type":        "string",
					"description": "Race ID",
				},
			},
			Required: []string{"race_id"},
		},
	}, c.handleRaceState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_turn",
		Description: "Resolve the next car's turn using its configured strategy",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"race_id": map[string]interface{}{
					"type":        "string",
					"description": "Race ID",
				},
			},
			Required: []string{"race_id"},
		},
	}, c.handlePlayTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "autoplay",
		Description: "Play turns automatically until the race finishes or the turn cap is hit",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"race_id": map[string]interface{}{
					"type":        "string",
					"description": "Race ID",
				},
				"max_turns": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of turns to play (optional)",
				},
			},
			Required: []string{"race_id"},
		},
	}, c.handleAutoplay)

	// Track library
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_tracks",
		Description: "List available tracks",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListTracks)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_plan",
		Description: "Run the path search for one car on a track and show the resulting move plan",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"track": map[string]interface{}{
					"type":        "string",
					"description": "Name of the track to solve",
				},
				"car": map[string]interface{}{
					"type":        "integer",
					"description": "Car index to plan for (0-based, default 0)",
				},
			},
			Required: []string{"track"},
		},
	}, c.handleSolvePlan)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "race_rules",
		Description: "Get the full rules of the race game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRaceRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateRace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	track, _ := args["track"].(string)
	strategiesRaw, _ := args["strategies"].([]interface{})

	strategies := make([]string, 0, len(strategiesRaw))
	for _, s := range strategiesRaw {
		if strategy, ok := s.(string); ok {
			strategies = append(strategies, strategy)
		}
	}

	body := map[string]interface{}{"track": track}
	if len(strategies) > 0 {
		body["strategies"] = strategies
	}

	var race service.RaceInfo
	err := c.apiCall("POST", "/api/races", body, &race)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatRaceInfo(&race)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListRaces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                `json:"count"`
		Races []service.RaceInfo `json:"races"`
	}

	err := c.apiCall("GET", "/api/races", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Races (%d):\n\n", response.Count)
	for _, r := range response.Races {
		status := "running"
		if r.State != nil && r.State.Finished {
			status = "finished"
		}
		result += fmt.Sprintf("- %s (Track: %s, Turns: %d, %s, Created: %s)\n",
			r.ID, r.TrackName, r.Turns, status, r.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetRace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	raceID, _ := args["race_id"].(string)

	var race service.RaceInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/races/%s", raceID), nil, &race)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatRaceInfo(&race)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRaceState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	raceID, _ := args["race_id"].(string)

	var state engine.RaceState
	err := c.apiCall("GET", fmt.Sprintf("/api/races/%s/state", raceID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatRaceState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePlayTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	raceID, _ := args["race_id"].(string)

	var result service.TurnResult
	err := c.apiCall("POST", fmt.Sprintf("/api/races/%s/turn", raceID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatTurnResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleAutoplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	raceID, _ := args["race_id"].(string)

	body := map[string]interface{}{}
	if maxTurns, ok := args["max_turns"].(float64); ok {
		body["max_turns"] = int(maxTurns)
	}

	var result service.AutoplayResult
	err := c.apiCall("POST", fmt.Sprintf("/api/races/%s/autoplay", raceID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatAutoplayResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleListTracks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var tracks []service.TrackInfo
	err := c.apiCall("GET", "/api/tracks", nil, &tracks)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Tracks:\n\n"
	for _, track := range tracks {
		result += fmt.Sprintf("• %s\n  Size: %dx%d, Cars: %d, Finish cells: %d\n\n",
			track.Name, track.Width, track.Height, track.CarCount, track.FinishCells)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolvePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	track, _ := args["track"].(string)

	car := 0
	if carArg, ok := args["car"].(float64); ok {
		car = int(carArg)
	}

	var plan service.PlanResult
	err := c.apiCall("GET", fmt.Sprintf("/api/tracks/%s/plan?car=%d", track, car), nil, &plan)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatPlanResult(&plan)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRaceRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := `Grid Race - Complete Rules

GAME OBJECTIVE:
Steer your car across a finish line in the correct direction before the
other cars, without crashing into walls or other cars.

TURN MECHANICS:
• Cars take turns in track order; crashed cars are skipped
• Each turn the car picks one of nine accelerations: every combination
  of -1, 0, or +1 on each axis (including no change at all)
• The acceleration is added to the car's velocity, then the car moves
  in a straight line from its position by the full velocity vector
• Velocity persists between turns: going fast means braking takes time

TRACK LEGEND:
• # - Wall (crashing terrain)
• (space) - Open track
• <, >, ^, v - Finish cells; the arrow is the required travel direction
• a-z, 0-9 etc. - Car starting positions (any non-reserved character)
• X - A crashed car

CRASHING:
• A car that touches a wall cell anywhere along its movement line crashes
  at that cell and is out of the race
• A car that touches a cell occupied by another active car crashes too
• Crashed cars stay on the board as X but no longer block movement

WINNING:
• Crossing a finish cell while moving in the arrow's direction wins
  immediately; the car completes its full movement
• Crossing a finish cell the wrong way does not stop the car, but after
  a wrong crossing the car must cross correctly twice in a row to win
• If all cars but one crash, the survivor wins on the spot
• If every car crashes, the race ends with no winner

STRATEGIES:
• path_finder - Breadth-first search for a shortest winning plan; falls
  back to holding still when no winning plan exists
• do_not_move - Never accelerates; the car coasts on its velocity

API USAGE:
• create_race, then play_turn repeatedly or autoplay to the end
• race_state shows the rendered board after every turn
• solve_plan previews the search result for a track without racing`

	return mcp.NewToolResultText(rules), nil
}

// Formatting helpers

func formatRaceInfo(race *service.RaceInfo) string {
	result := fmt.Sprintf("Race: %s\nTrack: %s\nStrategies: %s\nTurns: %d\nCreated: %s\n",
		race.ID, race.TrackName,
		strings.Join(race.Strategies, ", "),
		race.Turns,
		race.CreatedAt.Format("2006-01-02 15:04:05"))

	for _, warning := range race.Warnings {
		result += fmt.Sprintf("Warning: %s\n", warning)
	}

	return result + "\n" + formatRaceState(race.State)
}

func formatRaceState(state *engine.RaceState) string {
	if state == nil {
		return "No race state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Board %dx%d | Turn of car #%d\n\n",
		state.Width, state.Height, state.CurrentCar))

	result.WriteString(state.Rendering)
	if !strings.HasSuffix(state.Rendering, "\n") {
		result.WriteString("\n")
	}

	result.WriteString("\nCars:\n")
	for i, car := range state.Cars {
		marker := " "
		if i == state.CurrentCar && !state.Finished {
			marker = ">"
		}
		status := ""
		if car.Crashed {
			status = " CRASHED"
		}
		result.WriteString(fmt.Sprintf("%s %s at %s velocity %s moves=%d%s\n",
			marker, car.ID, car.Position.String(), car.Velocity.String(), car.MoveCount, status))
	}

	if state.Finished {
		if state.Winner >= 0 && state.Winner < len(state.Cars) {
			result.WriteString(fmt.Sprintf("\n🏁 Car %s wins!", state.Cars[state.Winner].ID))
		} else {
			result.WriteString("\n💥 All cars crashed - no winner")
		}
	}

	return result.String()
}

func formatTurnResult(result *service.TurnResult) string {
	status := "✓"
	if result.Crashed {
		status = "✗ crashed"
	}
	response := fmt.Sprintf("Turn %d: car %s moved %s %s\n",
		result.Turn, result.CarID, result.Move, status)

	return response + "\n" + formatRaceState(result.State)
}

func formatAutoplayResult(result *service.AutoplayResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Autoplay: %d turns played\n", result.TurnsPlayed))
	if result.Truncated {
		b.WriteString("Stopped: turn cap reached before the race finished\n")
	}
	if result.Finished && result.WinnerID != "" {
		b.WriteString(fmt.Sprintf("Winner: car %s\n", result.WinnerID))
	}

	b.WriteString("\n")
	b.WriteString(formatRaceState(result.State))
	return b.String()
}

func formatPlanResult(plan *service.PlanResult) string {
	if !plan.Found {
		return fmt.Sprintf("No winning plan for car %d on track %s: %s",
			plan.CarIndex, plan.TrackName, plan.Reason)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Winning plan for car %d on track %s (%d moves):\n",
		plan.CarIndex, plan.TrackName, plan.Length))
	for i, move := range plan.Moves {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, move))
	}
	return b.String()
}
