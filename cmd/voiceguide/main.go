package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"voiceguide/internal/api"
	"voiceguide/pkg/config"
	"voiceguide/pkg/db"
	"voiceguide/pkg/db/maintenance"
	"voiceguide/pkg/geo"
	"voiceguide/pkg/guide"
	"voiceguide/pkg/logging"
	"voiceguide/pkg/model"
	"voiceguide/pkg/narration"
	"voiceguide/pkg/position"
	"voiceguide/pkg/position/remote"
	"voiceguide/pkg/position/walker"
	"voiceguide/pkg/probe"
	"voiceguide/pkg/request"
	"voiceguide/pkg/route"
	"voiceguide/pkg/speech"
	"voiceguide/pkg/store"
	"voiceguide/pkg/tour"
	"voiceguide/pkg/tracker"
	"voiceguide/pkg/tts"
	"voiceguide/pkg/version"
	"voiceguide/pkg/watcher"
)

var (
	configPath = flag.String("config", "configs/voiceguide.yaml", "Path to the config file")
	envPath    = flag.String("env", ".env", "Path to an optional .env file with secrets")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	// Variables already set in the environment win over the file.
	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", *envPath, err)
		os.Exit(1)
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()
	tts.SetLogPath(appCfg.Log.TTS.Path)

	slog.Info("VoiceGuide Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()
	maintenance.Run(ctx, dbConn, appCfg.DB.CacheTTL.Std())

	prefs := config.NewProvider(appCfg, st)
	tr := tracker.New()
	reqClient := request.New(appCfg.Request, st, tr)
	src := initGuideSource(ctx, appCfg, prefs, reqClient, st)

	// Speech
	engine := prefs.Engine(ctx)
	out := speech.NewOutput(engine, appCfg.TTS, tr)
	defer out.Close()
	out.SetVolume(prefs.Volume(ctx))

	// Browser stream, map and transcript
	hub := remote.NewHub()
	var sess *tour.Session
	stream := api.NewStream(hub, func() any { return sess.Snapshot() })
	mapState := api.NewMapState(stream)
	transcript := narration.NewTranscript(appCfg.Tour.Typewriter, appCfg.Tour.TypewriterInterval.Std(),
		func(visible string, complete bool) {
			stream.Broadcast("transcript", map[string]any{"text": visible, "complete": complete})
		})
	ctrl := narration.NewController(out, transcript)

	// Tour session
	posWatcher, walk := initWatcher(appCfg, hub)
	sess = tour.NewSession(ctrl, mapState, src, posWatcher, tour.Options{
		Threshold:         float64(appCfg.Tour.ProximityThreshold),
		BreadcrumbSpacing: float64(appCfg.Tour.BreadcrumbSpacing),
		Composer:          narration.NewComposer(appCfg.Tour.IntroPhrases),
	})
	defer sess.Close()
	stopFollow := stream.Follow(sess)
	defer stopFollow()

	planner := initPlanner(appCfg, st, tr)
	sess.OnGuideLoaded(func(g *model.Guide) {
		// Directions may hit the network; the session does not wait for them.
		go func() {
			legs := route.Build(ctx, planner, g.TourRoute, g.POIs)
			mapState.SetLegs(legs)
			if walk != nil {
				walk.SetRoute(walkerRoute(g, legs, appCfg.Position.Walker.StartAt))
			}
		}()
	})

	// Startup Probes
	probes := []probe.Probe{
		{Name: "Database", Check: probe.Ping(dbConn), Critical: true},
		{Name: "Speech Engine", Check: speechCheck(engine, out)},
	}
	if appCfg.Guide.GistID == "" {
		probes = append(probes, probe.Probe{Name: "Guide Directory", Check: probe.Dir(appCfg.Guide.Dir), Critical: true})
	}
	if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	// Initial guide and mode. A failed load leaves an empty tour running.
	if err := sess.LoadGuide(ctx, prefs.Language(ctx)); err != nil {
		slog.Warn("Initial guide load failed", "error", err)
	}
	mode, err := position.ParseMode(prefs.Mode(ctx))
	if err != nil {
		mode = position.Simulated
	}
	if err := sess.SetMode(mode); err != nil {
		slog.Warn("Could not start the configured mode", "mode", mode, "error", err)
	}

	// Local guides are reloaded when their files change, progress is kept.
	if appCfg.Guide.GistID == "" {
		guideWatch := watcher.NewService(appCfg.Guide.Dir)
		go guideWatch.Run(ctx, 2*time.Second, func(file string) {
			if err := sess.SetLanguage(ctx, sess.Language()); err != nil {
				slog.Warn("Guide reload failed", "file", file, "error", err)
			}
		})
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	srv := api.NewServer(appCfg.Server.Address, api.Handlers{
		Config: api.NewConfigHandler(prefs),
		Tour:   api.NewTourHandler(sess, prefs),
		Guide:  api.NewGuideHandler(src, appCfg.Guide.Catalog, st, sess),
		Map:    api.NewMapHandler(mapState, sess),
		Audio:  api.NewAudioHandler(out, prefs),
		Stats:  api.NewStatsHandler(tr, sess, stream),
		Stream: stream,
	}, appCfg.Server.StaticDir, func() { quit <- syscall.SIGTERM })
	srv.Handler = loggingMiddleware(srv.Handler)

	return runServerLifecycle(ctx, srv, quit)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func initGuideSource(ctx context.Context, appCfg *config.Config, prefs config.Provider, client *request.Client, st store.Store) guide.Source {
	var src guide.Source
	if gistID := prefs.GistID(ctx); gistID != "" {
		slog.Info("Guide source: gist", "id", gistID)
		src = guide.NewGistSource(client, appCfg.Guide.GistAPI, gistID)
	} else {
		slog.Info("Guide source: directory", "path", appCfg.Guide.Dir)
		src = guide.NewFileSource(appCfg.Guide.Dir)
	}
	return guide.Record(src, st)
}

func initWatcher(appCfg *config.Config, hub *remote.Hub) (position.Watcher, *walker.Walker) {
	if appCfg.Position.Watcher != "walker" {
		return hub, nil
	}
	wc := appCfg.Position.Walker
	w := walker.New(walker.Config{
		Speed:  wc.Speed,
		Tick:   wc.Tick.Std(),
		Dwell:  wc.Dwell.Std(),
		Jitter: float64(wc.Jitter),
		Loop:   wc.Loop,
	})
	slog.Info("Live positions: emulated walker", "speed_mps", wc.Speed)
	return w, w
}

func initPlanner(appCfg *config.Config, st store.Store, tr *tracker.Tracker) route.Planner {
	if appCfg.Route.Provider != "google-maps" {
		return route.Straight{}
	}
	gm, err := route.NewGoogleMaps(appCfg.Route.GoogleMapsKey, st, tr)
	if err != nil {
		slog.Warn("Google Maps directions unavailable, drawing straight legs", "error", err)
		return route.Straight{}
	}
	return gm
}

// walkerRoute turns the route legs into the walker path, starting at the
// stop named startAt (the first stop when empty or unknown).
func walkerRoute(g *model.Guide, legs [][]geo.Point, startAt string) []walker.Waypoint {
	stops := guide.RouteStops(g)
	first := 0
	for i, p := range stops {
		if p.ID == startAt {
			first = i
			break
		}
	}
	if first < len(legs) {
		legs = legs[first:]
	} else {
		legs = nil
	}

	var path []walker.Waypoint
	if len(legs) == 0 {
		if first < len(stops) {
			path = append(path, walker.Waypoint{Point: stops[first].Point(), Stop: true})
		}
		return path
	}
	for i, leg := range legs {
		for j, p := range leg {
			if i > 0 && j == 0 {
				continue
			}
			path = append(path, walker.Waypoint{Point: p, Stop: j == 0 || j == len(leg)-1})
		}
	}
	return path
}

func speechCheck(engine string, out speech.Output) probe.CheckFunc {
	return func(context.Context) error {
		if _, silent := out.(*speech.Silent); silent && engine != speech.EngineSilent {
			return fmt.Errorf("engine %q unavailable, narrating silently", engine)
		}
		return nil
	}
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
