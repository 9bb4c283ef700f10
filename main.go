package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hindinews/pkg/api"
	"hindinews/pkg/config"
	"hindinews/pkg/content"
	"hindinews/pkg/db"
	"hindinews/pkg/feeds"
	"hindinews/pkg/logging"
	"hindinews/pkg/pipeline"
	"hindinews/pkg/replication"
	"hindinews/pkg/rewrite"
	"hindinews/pkg/sources"
)

var migrateWorkers int

func main() {
	var rootCmd = &cobra.Command{
		Use:          "hindinews",
		Short:        "Hindi news ingestion and rewrite pipeline",
		Long:         "Fetches Hindi news feeds, rewrites each article through AI providers and stores the result",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run cycles on a schedule and serve the control API",
		RunE:  serve,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run a single cycle and print its report",
		RunE:  runOnce,
	})

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy stored articles from MongoDB into the configured SQL store",
		RunE:  migrate,
	}
	migrateCmd.Flags().IntVar(&migrateWorkers, "workers", replication.DefaultWorkers, "Parallel batches")
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything a command needs once wiring succeeded
type app struct {
	cfg          *config.Config
	store        db.Store
	orchestrator *pipeline.Orchestrator
	logger       *slog.Logger
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	list, err := cfg.Sources()
	if err != nil {
		return nil, err
	}
	registry := sources.NewRegistry(list...)

	store, err := db.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	fetcher := feeds.NewFeedFetcher(feeds.Config{
		Timeout:         cfg.FeedTimeout,
		ItemCapOverride: cfg.ItemCapOverride,
	}, logger)
	enricher := content.NewEnricher(cfg.BodyTimeout, cfg.ImageTimeout, logger)

	var opts []rewrite.Option
	for _, p := range cfg.RewriteProviders() {
		opts = append(opts, rewrite.WithProvider(p, cfg.ProviderTimeout))
	}
	engine := rewrite.NewEngine(logger, opts...)
	if len(engine.Providers()) == 0 {
		logger.Warn("No AI provider keys configured, every article will use fallback text")
	}

	processor := pipeline.NewProcessor(store, enricher, engine, pipeline.ImagePolicy{BaseURL: cfg.ImageBaseURL}, logger)
	orchestrator := pipeline.NewOrchestrator(pipeline.Config{
		MaxItems:    cfg.MaxItems,
		Retention:   cfg.Retention,
		Concurrency: cfg.Concurrency,
	}, registry, fetcher, processor, store, logger)

	logger.Info("Pipeline ready",
		"sources", registry.Len(),
		"providers", engine.Providers(),
		"store", cfg.Store.Resolve(),
		"concurrency", cfg.Concurrency)

	return &app{cfg: cfg, store: store, orchestrator: orchestrator, logger: logger}, nil
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	server := api.NewServer(a.cfg.HTTPAddr, a.orchestrator, a.store, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.orchestrator.Loop(gctx, a.cfg.InitialDelay, a.cfg.CycleInterval)
		return nil
	})
	g.Go(func() error {
		return server.Start(gctx)
	})
	return g.Wait()
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	report, ok := a.orchestrator.TryRun(ctx)
	if !ok {
		return pipeline.ErrCycleRunning
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// migrate reads MONGO_URI as the source and writes to postgres or supabase
func migrate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	if cfg.Store.MongoURI == "" {
		return errors.New("MONGO_URI is required as the migration source")
	}
	source, err := db.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDB, cfg.Store.Table)
	if err != nil {
		return err
	}
	defer source.Close(context.Background())

	targetCfg := cfg.Store
	targetCfg.MongoURI = ""
	if b := targetCfg.Resolve(); b != db.BackendPostgres && b != db.BackendSupabase {
		return fmt.Errorf("migration target must be postgres or supabase, got %q", b)
	}
	target, err := db.Open(ctx, targetCfg, logger)
	if err != nil {
		return fmt.Errorf("open target: %w", err)
	}
	defer target.Close(context.Background())

	r, err := replication.NewReplicator(replication.Config{
		Source:  source,
		Target:  target,
		Workers: migrateWorkers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := r.Replicate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Done. processed=%d inserted=%d skipped=%d duration=%s\n",
		res.Processed, res.Inserted, res.Skipped, time.Since(start).Round(time.Millisecond))
	return nil
}

func (a *app) close() {
	// the run context may already be cancelled
	if err := a.store.Close(context.Background()); err != nil {
		a.logger.Warn("Closing store failed", "error", err)
	}
}
