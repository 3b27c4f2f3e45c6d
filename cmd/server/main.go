package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"persona-doc-intel/internal/api"
	"persona-doc-intel/internal/config"
	"persona-doc-intel/internal/database"
	"persona-doc-intel/internal/llm"
	"persona-doc-intel/internal/logger"
	"persona-doc-intel/internal/metrics"
	"persona-doc-intel/internal/output"
	"persona-doc-intel/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	addr := flag.String("addr", "", "Listen address (default from config)")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	var (
		cfg *config.AppConfig
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyEnv(cfg)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Components
	p := pipeline.New(
		pipeline.WithLogger(log),
		pipeline.WithMetrics(m),
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithTimeBudget(cfg.Pipeline.TimeBudget()),
	)
	genOpts := []output.Option{output.WithLogger(log)}
	if cfg.LLM.Enabled {
		refiner := llm.NewOllamaRefiner(cfg.LLM.Model, time.Duration(cfg.LLM.TimeoutSecs)*time.Second, log)
		refiner.MaxLength = cfg.Output.RefinedLength
		genOpts = append(genOpts, output.WithRefiner(refiner))
	}
	gen := output.NewGenerator(output.Options{
		PreviewLength:   cfg.Output.PreviewLength,
		RefinedLength:   cfg.Output.RefinedLength,
		SubsectionCount: cfg.Output.SubsectionCount,
	}, genOpts...)

	apiOpts := []api.Option{api.WithLogger(log), api.WithMetrics(m)}
	if cfg.Database.Enabled {
		db, err := database.NewDB(cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		if err := db.Initialize(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		apiOpts = append(apiOpts, api.WithStore(db))
		log.Info().Msg("run storage enabled")
	}

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewAPI(p, gen, apiOpts...), reg)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}
