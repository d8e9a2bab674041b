package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/audio"
	"github.com/lixenwraith/starfield/beatsync"
	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/core"
	"github.com/lixenwraith/starfield/engine"
	"github.com/lixenwraith/starfield/field"
	"github.com/lixenwraith/starfield/logger"
	"github.com/lixenwraith/starfield/render"
	"github.com/lixenwraith/starfield/spotify"
	"github.com/lixenwraith/starfield/status"
)

// redisPingTimeout bounds the startup cache probe
const redisPingTimeout = 2 * time.Second

// flags overlay the environment loaded by config.LoadApp
type flags struct {
	token         string
	apiURL        string
	settings      string
	logPath       string
	logLevel      string
	debug         bool
	click         bool
	redisAddr     string
	redisPassword string
	redisDB       int
	cacheTTL      time.Duration
}

var cliFlags flags

var rootCmd = &cobra.Command{
	Use:   "starfield",
	Short: "Terminal starfield that moves to the music playing on Spotify",
	Long: `starfield polls the Spotify Web API for the current track, fetches its audio analysis
and drives a particle field with beats, tatums, segments and sections.

Keys: q/Esc quit, d debug markers, F1 debug text, h hide overlay, l light theme, r resync.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp(cmd)
		return run(cmd.Context(), app)
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cliFlags.token, "token", "", "Spotify access token (env SPOTIFY_TOKEN)")
	f.StringVar(&cliFlags.apiURL, "api-url", "", "Web API root (env SPOTIFY_API_URL)")

	r := rootCmd.Flags()
	r.StringVar(&cliFlags.settings, "settings", "", "watched settings file of tunables (env STARFIELD_SETTINGS)")
	r.StringVar(&cliFlags.logPath, "log", "", "log file path (env STARFIELD_LOG)")
	r.StringVar(&cliFlags.logLevel, "log-level", "", "debug, info, warn or error (env STARFIELD_LOG_LEVEL)")
	r.BoolVar(&cliFlags.debug, "debug", false, "write the log file")
	r.BoolVar(&cliFlags.click, "click", false, "play a click on every beat")
	r.StringVar(&cliFlags.redisAddr, "redis", "", "Redis address for the analysis cache (env REDIS_ADDR)")
	r.StringVar(&cliFlags.redisPassword, "redis-password", "", "Redis password (env REDIS_PASSWORD)")
	r.IntVar(&cliFlags.redisDB, "redis-db", 0, "Redis database (env REDIS_DB)")
	r.DurationVar(&cliFlags.cacheTTL, "cache-ttl", 0, "analysis cache lifetime (env ANALYSIS_CACHE_TTL)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadApp reads the environment and applies the flags the user actually set
func loadApp(cmd *cobra.Command) *config.App {
	app, _ := config.LoadApp()
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if set("token") {
		app.Token = cliFlags.token
	}
	if set("api-url") {
		app.APIURL = cliFlags.apiURL
	}
	if set("settings") {
		app.SettingsPath = cliFlags.settings
	}
	if set("log") {
		app.LogPath = cliFlags.logPath
	}
	if set("log-level") {
		app.LogLevel = cliFlags.logLevel
	}
	if set("debug") {
		app.Debug = cliFlags.debug
	}
	if set("click") {
		app.Click = cliFlags.click
	}
	if set("redis") {
		app.RedisAddr = cliFlags.redisAddr
	}
	if set("redis-password") {
		app.RedisPassword = cliFlags.redisPassword
	}
	if set("redis-db") {
		app.RedisDB = cliFlags.redisDB
	}
	if set("cache-ttl") {
		app.CacheTTL = cliFlags.cacheTTL
	}
	return app
}

// newSource builds the API client, fronted by the Redis cache when one answers
func newSource(ctx context.Context, app *config.App, token *spotify.Token, log *zap.Logger) (beatsync.Source, func()) {
	client := spotify.NewClient(app.APIURL, token, log)
	if app.RedisAddr == "" {
		return client, func() {}
	}

	store := spotify.NewRedisStore(app.RedisAddr, app.RedisPassword, app.RedisDB)
	if err := store.Ping(ctx, redisPingTimeout); err != nil {
		log.Warn("analysis cache unavailable, continuing without it", zap.Error(err))
		store.Close()
		return client, func() {}
	}
	log.Info("analysis cache connected", zap.String("addr", app.RedisAddr))
	return spotify.NewCachedSource(client, store, app.CacheTTL, log), func() { store.Close() }
}

func run(parent context.Context, app *config.App) error {
	if parent == nil {
		parent = context.Background()
	}
	log, closeLog, err := logger.New(logger.Config{
		Enabled: app.Debug,
		Level:   app.LogLevel,
		Path:    app.LogPath,
	})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := config.DefaultSettings()
	if app.SettingsPath != "" {
		if batch, err := config.ReadSettings(app.SettingsPath); err != nil {
			log.Warn("settings file unreadable, using defaults", zap.String("path", app.SettingsPath), zap.Error(err))
		} else {
			// The settings file may carry a fresher credential than the environment
			if v := batch[engine.TokenKey]; v != "" {
				app.Token = v
			}
			delete(batch, engine.TokenKey)
			for _, err := range settings.Apply(batch) {
				log.Warn("setting rejected", zap.Error(err))
			}
		}
	}
	if app.Token == "" {
		return fmt.Errorf("no Spotify token, set SPOTIFY_TOKEN, pass --token or add %s to the settings file", engine.TokenKey)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()

	core.SetCrashHandler(func(r any) {
		screen.Fini()
		// Use \r\n for raw mode compatibility to avoid zig-zag output
		fmt.Fprintf(os.Stderr, "\r\n\x1b[31mSTARFIELD CRASHED: %v\x1b[0m\r\n", r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
		log.Error("crash", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		closeLog()
		os.Exit(1)
	})
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	surface := render.NewTerminal(screen)
	clock := core.MonotonicClock{}
	statusLog := status.NewLog()

	f := field.New(&settings.Simulation, rand.New(rand.NewSource(time.Now().UnixNano())))
	conductor := beatsync.NewConductor(f, &settings.Simulation, &settings.Sync)
	sinks := beatsync.Sinks{conductor}

	if app.Click {
		clicker := audio.NewClicker()
		if err := clicker.Initialize(); err != nil {
			log.Warn("audio unavailable, beat clicks disabled", zap.Error(err))
		} else {
			defer clicker.Cleanup()
			sinks = append(sinks, clicker)
		}
	}

	token := spotify.NewToken(app.Token)
	source, closeSource := newSource(ctx, app, token, log)
	defer closeSource()

	sched := beatsync.NewScheduler(ctx, beatsync.Options{
		Config:     &settings.Sync,
		Source:     source,
		Credential: token,
		Clock:      clock,
		Sink:       sinks,
		Status:     statusLog,
		Logger:     log,
	})
	sched.OnTransition(func(from, to beatsync.State) {
		log.Debug("sync state", zap.Stringer("from", from), zap.Stringer("to", to))
	})

	var batches <-chan map[string]string
	if app.SettingsPath != "" {
		w, err := config.NewWatcher(app.SettingsPath, log)
		if err != nil {
			log.Warn("settings file not watched", zap.Error(err))
		} else {
			defer w.Close()
			batches = w.Batches()
		}
	}

	events := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	})

	host := engine.New(engine.Options{
		Surface:   surface,
		Field:     f,
		Scheduler: sched,
		Settings:  settings,
		Clock:     clock,
		Status:    statusLog,
		Events:    events,
		Batches:   batches,
		Token:     token,
		Logger:    log,
	})

	log.Info("starfield started", zap.String("api", app.APIURL), zap.Bool("click", app.Click))
	err = host.Run(ctx)
	log.Info("starfield stopped")
	return err
}
