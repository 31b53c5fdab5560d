package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wikiscope/internal/api"
	"wikiscope/pkg/cache"
	"wikiscope/pkg/config"
	"wikiscope/pkg/dashboard"
	"wikiscope/pkg/db"
	"wikiscope/pkg/db/maintenance"
	"wikiscope/pkg/logging"
	"wikiscope/pkg/probe"
	"wikiscope/pkg/request"
	"wikiscope/pkg/store"
	"wikiscope/pkg/tracker"
	"wikiscope/pkg/version"
	"wikiscope/pkg/wikidata"
	"wikiscope/pkg/wikipedia"
)

var (
	configPath = flag.String("config", "configs/wikiscope.yaml", "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
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

	slog.Info("Wikiscope started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := maintenance.Run(ctx, st, dbConn, time.Duration(appCfg.DB.FetchLogRetention)); err != nil {
		slog.Error("Maintenance tasks failed", "error", err)
	}

	svcs := initServices(appCfg, st)

	// Startup Probes
	results := probe.Run(ctx, []probe.Probe{
		{
			Name:     "Database",
			Check:    dbConn.PingContext,
			Critical: true,
		},
		{
			Name: "SPARQL Endpoint",
			Check: func(c context.Context) error {
				_, err := svcs.SPARQLClient.Query(c, "SELECT (1 AS ?probe) WHERE {} LIMIT 1")
				return err
			},
			Critical: false, // snapshots keep the dashboard usable offline
			Timeout:  15 * time.Second,
		},
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	go svcs.Dashboard.Start(ctx)

	return runServer(ctx, appCfg, svcs, st)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// CoreServices bundles everything the HTTP layer needs.
type CoreServices struct {
	Tracker         *tracker.Tracker
	SPARQLClient    *wikidata.Client
	CachedClient    *wikidata.CachedClient
	WikipediaClient *wikipedia.Client
	Dashboard       *dashboard.Service
}

func initServices(cfg *config.Config, st store.Store) *CoreServices {
	tr := tracker.New()

	reqClient := request.New(tr, request.ClientConfig{
		Timeout:   time.Duration(cfg.SPARQL.Timeout),
		UserAgent: "wikiscope/" + version.Version,
	})

	sparqlClient := wikidata.NewClient(reqClient, slog.With("component", "wikidata_client"))
	sparqlClient.Endpoint = cfg.SPARQL.Endpoint
	sparqlClient.ProxyPrefix = cfg.SPARQL.ProxyPrefix

	cachedClient := wikidata.NewCachedClient(sparqlClient, cache.New(), tr, time.Duration(cfg.Cache.TTL))

	wpClient := wikipedia.NewClient(reqClient, cfg.Wikipedia.Language)

	svc := dashboard.NewService(cachedClient, st, tr, dashboard.NewHub(), dashboard.Config{
		Limit:             cfg.Datasets.Limit,
		Language:          cfg.Datasets.Language,
		ClusterResolution: cfg.Map.ClusterResolution,
		RefreshInterval:   time.Duration(cfg.Refresh.Interval),
		RefreshOnStart:    cfg.Refresh.OnStart,
	}, slog.With("component", "dashboard"))

	return &CoreServices{
		Tracker:         tr,
		SPARQLClient:    sparqlClient,
		CachedClient:    cachedClient,
		WikipediaClient: wpClient,
		Dashboard:       svc,
	}
}

func runServer(ctx context.Context, cfg *config.Config, svcs *CoreServices, st store.Store) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewMapHandler(svcs.Dashboard),
		api.NewSeriesHandler(svcs.Dashboard),
		api.NewSummaryHandler(svcs.WikipediaClient),
		api.NewStatsHandler(svcs.Tracker, svcs.CachedClient.CacheLen, st),
		api.NewFetchesHandler(st),
		api.NewLiveHandler(svcs.Dashboard.Hub()),
		api.NewRefreshHandler(svcs.Dashboard),
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
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
