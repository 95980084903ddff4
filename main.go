// Command game2048 starts the 2048 game server.
//
// It supports four modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a local game in the terminal
//  4. "validate" – checks every config file in a directory
//
// Flags control host/port, config directory, session storage (files or Redis),
// debug logging and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/term"

	"github.com/wricardo/mcp-training/game2048/api"
	"github.com/wricardo/mcp-training/game2048/game/config"
	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/service"
	"github.com/wricardo/mcp-training/game2048/game/session"
	"github.com/wricardo/mcp-training/game2048/transport/mcp"
	"github.com/wricardo/mcp-training/game2048/transport/terminal"
	"github.com/wricardo/mcp-training/game2048/transport/websocket"
	"github.com/wricardo/mcp-training/game2048/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "2048 Game Server"
)

const (
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
)

// serverOptions are the process settings shared by every mode
type serverOptions struct {
	Host          string
	Port          int
	ConfigDir     string
	DefaultConfig string
	SessionsDir   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	NgrokEnabled  bool
	NgrokAuth     string
	NgrokDomain   string
}

func (o serverOptions) addr() string {
	return net.JoinHostPort(o.Host, fmt.Sprintf("%d", o.Port))
}

func optionsFromCommand(cmd *cli.Command) serverOptions {
	return serverOptions{
		Host:          cmd.String("host"),
		Port:          int(cmd.Int("port")),
		ConfigDir:     cmd.String("config-dir"),
		DefaultConfig: cmd.String("default-config"),
		SessionsDir:   cmd.String("sessions-dir"),
		RedisAddr:     cmd.String("redis-addr"),
		RedisPassword: cmd.String("redis-password"),
		RedisDB:       int(cmd.Int("redis-db")),
		SessionTTL:    cmd.Duration("session-ttl"),
		NgrokEnabled:  cmd.Bool("ngrok"),
		NgrokAuth:     cmd.String("ngrok-auth"),
		NgrokDomain:   cmd.String("ngrok-domain"),
	}
}

// setupLogging writes human-friendly logs to a terminal and JSON otherwise.
// Logs always go to stderr so stdout stays free for MCP stdio and the terminal game.
func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func newApp() *cli.Command {
	serverAction := func(ctx context.Context, cmd *cli.Command) error {
		setupLogging(cmd.Bool("debug"))
		opts := optionsFromCommand(cmd)
		log.Info().Str("version", Version).Str("mode", "server").Msgf("Starting %s", AppName)

		svcs, err := initializeServices(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svcs.Close()
		return runHTTPServer(ctx, opts, svcs)
	}

	return &cli.Command{
		Name:    "game2048",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "default-config", Usage: "Config ID for sessions created without one (classic when empty)", Sources: cli.EnvVars("DEFAULT_CONFIG")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for session files when Redis is not used", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address; sessions are stored in Redis when set", Sources: cli.EnvVars("REDIS_ADDR")},
			&cli.StringFlag{Name: "redis-password", Usage: "Redis password", Sources: cli.EnvVars("REDIS_PASSWORD")},
			&cli.IntFlag{Name: "redis-db", Usage: "Redis database number", Sources: cli.EnvVars("REDIS_DB")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "Idle time after which sessions leave memory (and expire in Redis)", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: serverAction,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, metrics and MCP endpoint (default)",
				Action:  serverAction,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					setupLogging(cmd.Bool("debug"))
					opts := optionsFromCommand(cmd)

					svcs, err := initializeServices(opts)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					defer svcs.Close()
					return runStdioMCP(ctx, opts, svcs)
				},
			},
			{
				Name:  "play",
				Usage: "Play a game in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: config.DefaultConfigName, Usage: "Config ID to play"},
					&cli.Int64Flag{Name: "seed", Usage: "Seed for tile spawns (random when 0)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					setupLogging(cmd.Bool("debug"))
					if !cmd.Bool("debug") {
						zerolog.SetGlobalLevel(zerolog.WarnLevel)
					}
					eng, err := newLocalEngine(cmd.String("config-dir"), cmd.String("config"), cmd.Int64("seed"))
					if err != nil {
						return err
					}
					return terminal.Play(ctx, eng, os.Stdin, os.Stdout)
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate every config file in a directory",
				ArgsUsage: "[dir]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := cmd.Args().First()
					if dir == "" {
						dir = cmd.String("config-dir")
					}
					results, err := validate.Dir(dir)
					if err != nil {
						return err
					}
					if !validate.Report(os.Stdout, results) {
						return errors.New("config validation failed")
					}
					return nil
				},
			},
		},
	}
}

// main loads .env, builds the command tree and runs the selected mode until a signal arrives
func main() {
	setupLogging(false)

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msg("error loading .env file")
		}
	} else {
		log.Debug().Msg("loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

// newLocalEngine creates the engine for a terminal game from a config in configDir.
// A missing config directory falls back to the built-in classic config.
func newLocalEngine(configDir, configID string, seed int64) (*engine.GameEngine, error) {
	cfg := engine.DefaultConfig()
	if manager, err := config.NewManager(configDir); err == nil {
		if cfg, err = manager.LoadConfig(configID); err != nil {
			return nil, err
		}
	} else {
		log.Warn().Err(err).Msg("using built-in config")
	}

	src := engine.NewRandomSource()
	if seed != 0 {
		src = engine.NewSeededSource(seed)
	}
	return engine.NewEngineWithSource(cfg, src)
}

// services bundles the long-lived game components
type services struct {
	game        service.GameService
	configs     *config.Manager
	sessions    *session.Manager
	persistence session.SessionPersistence
	redis       *session.RedisPersistence
}

// initializeServices wires session/config managers and the game service.
// Sessions are stored in Redis when an address is configured, otherwise as files.
func initializeServices(opts serverOptions) (*services, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if opts.DefaultConfig != "" {
		if err := configManager.SetDefault(opts.DefaultConfig); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
	}

	svcs := &services{configs: configManager}
	if opts.RedisAddr != "" {
		redisStore, err := session.NewRedisPersistence(opts.RedisAddr, opts.RedisPassword, opts.RedisDB,
			configManager, session.WithTTL(opts.SessionTTL))
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svcs.redis = redisStore
		svcs.persistence = redisStore
		log.Info().Str("addr", opts.RedisAddr).Int("db", opts.RedisDB).Msg("storing sessions in redis")
	} else {
		fileStore, err := session.NewFilePersistence(opts.SessionsDir, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svcs.persistence = fileStore
		log.Info().Str("dir", opts.SessionsDir).Msg("storing sessions as files")
	}

	// Create session manager with persistence
	svcs.sessions = session.NewManagerWithPersistence(svcs.persistence)

	// Load persisted sessions on startup
	if err := svcs.sessions.LoadPersistedSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted sessions")
	}

	svcs.game = service.NewGameService(svcs.sessions, configManager)
	return svcs, nil
}

// Close flushes sessions and releases the Redis connection
func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to save sessions on shutdown")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
}

// reloadConfigs drops cached configs so edited files take effect, then reapplies the default
func reloadConfigs(configs *config.Manager, defaultConfig string) error {
	if err := configs.RefreshCache(); err != nil {
		return err
	}
	if defaultConfig != "" {
		return configs.SetDefault(defaultConfig)
	}
	return nil
}

// configReloadRoutine reloads configs every time a signal arrives on reload
func configReloadRoutine(ctx context.Context, reload <-chan os.Signal, configs *config.Manager, defaultConfig string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			if err := reloadConfigs(configs, defaultConfig); err != nil {
				log.Error().Err(err).Msg("failed to reload configs")
				continue
			}
			log.Info().Msg("configs reloaded")
		}
	}
}

// startBackground runs session cleanup and storage sync until ctx is done
func (s *services) startBackground(ctx context.Context, wg *sync.WaitGroup, ttl time.Duration) {
	wg.Add(2)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, s.sessions, ttl, cleanupInterval)
	}()
	go func() {
		defer wg.Done()
		persistenceSyncRoutine(ctx, s.sessions, s.persistence, syncInterval)
	}()
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("count", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// pruneOrphanedSessions drops in-memory sessions whose stored copy is gone
// (file deleted or Redis key expired) and returns how many were removed.
func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Debug().Str("session_id", sess.ID).Msg("pruned session from memory (storage copy deleted)")
		}
	}
	return pruned
}

// persistenceSyncRoutine periodically syncs in-memory sessions with storage
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphanedSessions(manager, persistence); pruned > 0 {
				log.Info().Int("count", pruned).Msg("storage sync pruned orphaned sessions from memory")
			}
		}
	}
}

// newHandler combines the REST API with the /mcp endpoint
func newHandler(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", mcpClient)
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns once ctx is done.
func runHTTPServer(ctx context.Context, opts serverOptions, svcs *services) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	hub := websocket.NewHub()
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	svcs.startBackground(ctx, &wg, opts.SessionTTL)

	// SIGHUP re-reads the config directory
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	wg.Add(1)
	go func() {
		defer wg.Done()
		configReloadRoutine(ctx, reload, svcs.configs, opts.DefaultConfig)
	}()

	addr := opts.addr()
	apiServer := api.NewServer(svcs.game, hub)
	mcpClient := mcp.NewClient("http://" + addr)
	handler := newHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)
		log.Info().Msgf("Metrics: http://%s/metrics", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if opts.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, handler)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, opts serverOptions, handler http.Handler) {
	if opts.NgrokAuth == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		log.Info().Str("domain", opts.NgrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	ngrokURL := tun.URL()
	log.Info().Str("url", ngrokURL).Msg("ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", ngrokURL)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Warn().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a game server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port and returns its base URL
func startInternalAPI(ctx context.Context, wg *sync.WaitGroup, svcs *services) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub)}

	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return "http://" + listener.Addr().String(), nil
}

// runStdioMCP runs an MCP stdio server.
// It reuses an external API at the configured address when one answers; otherwise it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, opts serverOptions, svcs *services) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	// Background goroutines only exit once ctx is cancelled
	defer func() {
		cancel()
		wg.Wait()
	}()

	baseURL := "http://" + opts.addr()
	log.Info().Str("url", baseURL).Msg("checking for external API server")

	if externalAPIAvailable(baseURL) {
		log.Info().Str("url", baseURL).Msg("MCP stdio server ready (using external HTTP server)")
	} else {
		internalURL, err := startInternalAPI(ctx, &wg, svcs)
		if err != nil {
			return err
		}
		svcs.startBackground(ctx, &wg, opts.SessionTTL)
		baseURL = internalURL
		log.Info().Str("url", baseURL).Msg("MCP stdio server ready (using internal HTTP server)")
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
