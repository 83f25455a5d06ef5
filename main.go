// Command gridrace runs the grid race server and its companion tools.
//
// Subcommands:
//   - serve: HTTP server exposing the REST API, WebSocket hub, and an /mcp endpoint
//   - mcp:   MCP stdio server, reusing an external API or spinning up an internal one
//   - race:  play a race on a track file in the terminal
//   - solve: run the path search on a track file and print the plan
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/mwegmann/gridrace/api"
	"github.com/mwegmann/gridrace/game/engine"
	"github.com/mwegmann/gridrace/game/service"
	"github.com/mwegmann/gridrace/game/session"
	"github.com/mwegmann/gridrace/game/strategy"
	"github.com/mwegmann/gridrace/game/tracks"
	"github.com/mwegmann/gridrace/transport/mcp"
	"github.com/mwegmann/gridrace/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Race Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	root := &cli.Command{
		Name:    "gridrace",
		Usage:   "turn-based vector race: server, MCP transport, and track tools",
		Version: Version,
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			raceCommand(),
			solveCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// serverFlags are shared by the serve and mcp subcommands.
func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "port",
			Value: 8080,
			Usage: "HTTP server port",
		},
		&cli.StringFlag{
			Name:  "host",
			Value: "localhost",
			Usage: "HTTP server host",
		},
		&cli.StringFlag{
			Name:    "tracks",
			Value:   "tracks",
			Usage:   "directory containing track files",
			Sources: cli.EnvVars("TRACKS_DIR"),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
}

func serveCommand() *cli.Command {
	flags := append(serverFlags(),
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket, and MCP endpoint",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd.Bool("debug"))
			log.Printf("Starting %s v%s", AppName, Version)

			raceService, err := initializeServices(cmd.String("tracks"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}

			runHTTPServer(ctx, cmd, raceService)
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server, starting an internal HTTP API if none is running",
		Flags: serverFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd.Bool("debug"))

			raceService, err := initializeServices(cmd.String("tracks"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}

			return runStdioMCPWithInternalServer(cmd, raceService)
		},
	}
}

func setupLogging(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. If ngrok is enabled (via flag or environment), it also
// provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command, raceService service.RaceService) {
	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(raceService, hub)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))

	// MCP client for the /mcp endpoint, proxying back to this server
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?race=<race_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(runCtx, cmd, mainRouter)
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// mcpHandler serves MCP-over-HTTP requests through the proxy client.
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrokTunnel exposes the server through an ngrok tunnel until ctx is done.
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(authToken),
	)
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?race=<race_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// initializeServices wires the track library, session manager, and race service.
// It also starts a background cleanup routine to prune stale races.
func initializeServices(trackDir string) (service.RaceService, error) {
	trackManager, err := tracks.NewManager(trackDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create track manager: %w", err)
	}

	sessionManager := session.NewManager()
	raceService := service.NewRaceService(sessionManager, trackManager)

	go sessionCleanupRoutine(sessionManager)

	return raceService, nil
}

// sessionCleanupRoutine periodically removes races that have not been accessed
// within the retention window.
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(24 * time.Hour)
		if removed > 0 {
			log.Printf("Cleaned up %d expired races", removed)
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It tries to reuse an
// external API on the configured port; if unavailable, it starts a minimal
// internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(cmd *cli.Command, raceService service.RaceService) error {
	var baseURL string

	externalURL := fmt.Sprintf("http://localhost:%d", cmd.Int("port"))
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		apiServer := api.NewServer(raceService, hub)
		httpServer := &http.Server{Handler: apiServer}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		// Give the listener a moment before the first proxy call
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Println("MCP stdio server ready")
	if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func raceCommand() *cli.Command {
	return &cli.Command{
		Name:      "race",
		Usage:     "play a race on a track file in the terminal",
		ArgsUsage: "<track-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "moves",
				Usage: "move list file for the first car (one move name per line)",
			},
			&cli.StringFlag{
				Name:  "waypoints",
				Usage: "waypoint file for the first car (one \"x y\" pair per line)",
			},
			&cli.IntFlag{
				Name:  "max-turns",
				Value: 200,
				Usage: "stop after this many turns",
			},
		},
		Action: runRace,
	}
}

func runRace(ctx context.Context, cmd *cli.Command) error {
	game, err := loadGame(cmd.Args().First())
	if err != nil {
		return err
	}
	track := game.Track()

	for i := 0; i < game.CarCount(); i++ {
		strat, err := buildCarStrategy(cmd, game, i)
		if err != nil {
			return err
		}
		if err := game.SetMoveStrategy(i, strat); err != nil {
			return err
		}
	}

	fmt.Println(track.String())

	maxTurns := int(cmd.Int("max-turns"))
	for turn := 1; ; turn++ {
		if maxTurns > 0 && turn > maxTurns {
			fmt.Printf("turn cap of %d reached, stopping\n", maxTurns)
			return nil
		}

		current := game.CurrentCarIndex()
		move, err := game.NextCarMove(current)
		if err != nil {
			return err
		}
		if err := game.TakeTurn(move); err != nil {
			return err
		}

		id, _ := game.CarID(current)
		fmt.Printf("turn %d: car %c accelerates %s\n%s\n", turn, id, move, track.String())

		state := game.State()
		if state.Finished {
			if state.Winner != engine.NoWinner {
				fmt.Printf("car %s wins after %d turns\n", state.Cars[state.Winner].ID, turn)
			} else {
				fmt.Println("all cars crashed, no winner")
			}
			return nil
		}

		game.SwitchToNextActiveCar()
	}
}

// buildCarStrategy picks the strategy for one car. The moves and waypoints
// flags drive the first car; every other car plans its own path, holding
// still when no winning plan exists.
func buildCarStrategy(cmd *cli.Command, game *engine.Game, index int) (engine.MoveStrategy, error) {
	if index == 0 {
		if path := cmd.String("moves"); path != "" {
			return strategy.NewMoveListFromFile(path)
		}
		if path := cmd.String("waypoints"); path != "" {
			car, err := game.Track().Car(0)
			if err != nil {
				return nil, err
			}
			return strategy.NewPathFollowerFromFile(path, car)
		}
	}

	finder, err := strategy.NewPathFinder(game, index)
	if errors.Is(err, strategy.ErrSearchExhausted) {
		id, _ := game.CarID(index)
		fmt.Printf("car %c: no winning plan found, holding still\n", id)
		return strategy.NewDoNotMove(), nil
	}
	if err != nil {
		return nil, err
	}
	return finder, nil
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "run the path search on a track file and print the winning plan",
		ArgsUsage: "<track-file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "car",
				Value: 0,
				Usage: "car index to plan for",
			},
		},
		Action: runSolve,
	}
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	game, err := loadGame(cmd.Args().First())
	if err != nil {
		return err
	}

	carIndex := int(cmd.Int("car"))
	finder, err := strategy.NewPathFinder(game, carIndex)
	if errors.Is(err, strategy.ErrSearchExhausted) {
		fmt.Printf("no winning plan for car %d\n", carIndex)
		return nil
	}
	if err != nil {
		return err
	}

	plan := finder.Plan()
	fmt.Printf("winning plan for car %d (%d moves):\n", carIndex, len(plan))
	for i, move := range plan {
		fmt.Printf("%d. %s\n", i+1, move)
	}
	return nil
}

// loadGame parses a track file and builds a fresh turn engine for it.
func loadGame(path string) (*engine.Game, error) {
	if path == "" {
		return nil, errors.New("track file argument required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track file: %w", err)
	}
	defer f.Close()

	track, err := engine.ParseTrack(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse track: %w", err)
	}
	return engine.NewGame(track)
}
