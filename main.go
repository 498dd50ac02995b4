// Command mathquest starts the Math Quest game server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, the preset and session directories, and debug
// logging. A .env file in the working directory is loaded on startup.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/mathquest/mathquest/api"
	"github.com/mathquest/mathquest/game/config"
	"github.com/mathquest/mathquest/game/service"
	"github.com/mathquest/mathquest/game/session"
	"github.com/mathquest/mathquest/transport/mcp"
	"github.com/mathquest/mathquest/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Math Quest Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	godotenv.Load()

	cmd := &cli.Command{
		Name:    "mathquest",
		Usage:   "math board game server with REST, WebSocket, and MCP transports",
		Version: Version,
		Flags: []cli.Flag{
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
				Name:    "preset-dir",
				Value:   "configs",
				Usage:   "directory containing rule preset files",
				Sources: cli.EnvVars("PRESET_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "directory for persisted session files",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with REST API, WebSocket, and /mcp endpoint (default)",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp"},
				Usage:   "run an MCP stdio server, reusing an external API server when available",
				Action:  runStdioMCP,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Debug mode switches to the
// development config with human-readable output.
func newLogger(cmd *cli.Command) (*zap.Logger, error) {
	if cmd.Bool("debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// initializeServices wires session/preset managers and the game service.
// It also starts background routines that prune stale sessions and sync
// memory with the session files on disk.
func initializeServices(presetDir, sessionsDir string, logger *zap.Logger) (service.GameService, *session.Manager, error) {
	presetManager, err := config.NewManager(presetDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create preset manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	sessionManager.SetLogger(logger)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", zap.Error(err))
	}

	gameService := service.NewGameService(sessionManager, presetManager, logger)

	go sessionCleanupRoutine(sessionManager, logger)
	go filesystemSyncRoutine(sessionManager, persistence, logger)

	return gameService, sessionManager, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func sessionCleanupRoutine(manager *session.Manager, logger *zap.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(24 * time.Hour)
		if removed > 0 {
			logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
		}
	}
}

// filesystemSyncRoutine prunes in-memory sessions whose files were deleted,
// so removing a session file is enough to drop the session.
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence, logger *zap.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		pruned := 0
		for _, sess := range manager.List() {
			if !persistence.Exists(sess.ID) {
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
				}
			}
		}
		if pruned > 0 {
			logger.Info("pruned orphaned sessions from memory", zap.Int("pruned", pruned))
		}
	}
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint.
func runServe(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	gameService, sessionManager, err := initializeServices(cmd.String("preset-dir"), cmd.String("sessions-dir"), logger)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(logger)
	go hub.Run()

	apiServer := api.NewServer(gameService, hub, logger)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))

	// MCP over HTTP shares the process but still talks to the public API,
	// so both transports exercise the same code path.
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
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

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", addr),
			zap.String("rest", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?sessionId=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", zap.Error(err))
	}

	if err := sessionManager.SaveAllSessions(); err != nil {
		logger.Warn("failed to save sessions on shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}

// runStdioMCP runs an MCP stdio server. It reuses an external API server at
// the configured address when one is running; otherwise it starts a minimal
// internal HTTP API bound to a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), int(cmd.Int("port")))
	baseURL := externalURL

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logger.Info("using external api server for mcp", zap.String("url", externalURL))
	} else {
		gameService, _, err := initializeServices(cmd.String("preset-dir"), cmd.String("sessions-dir"), logger)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		logger.Info("starting internal api server for mcp stdio", zap.String("addr", internalAddr))

		hub := websocket.NewHub(logger)
		go hub.Run()

		apiServer := api.NewServer(gameService, hub, logger)
		internalServer := &http.Server{Handler: apiServer}

		go func() {
			if err := internalServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Error("internal http server error", zap.Error(err))
			}
		}()

		// Give the listener a moment before the first tool call.
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	logger.Info("mcp stdio server ready", zap.String("api", baseURL))
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}
