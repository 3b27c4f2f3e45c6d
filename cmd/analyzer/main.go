package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"persona-doc-intel/internal/config"
	"persona-doc-intel/internal/database"
	"persona-doc-intel/internal/llm"
	"persona-doc-intel/internal/logger"
	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/output"
	"persona-doc-intel/internal/pipeline"
	"persona-doc-intel/internal/processor"
	"persona-doc-intel/internal/tui"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config.yaml (default ./config.yaml or ~/.config/docintel/config.yaml)")
	docsDir := flag.String("docs", "", "Directory containing PDF, text or markdown documents")
	inputJSON := flag.String("input", "", "Challenge input JSON (persona, job and document list)")
	personaFlag := flag.String("persona", "", "Persona description")
	jobFlag := flag.String("job", "", "Job-to-be-done description")
	outDir := flag.String("out-dir", "", "Output directory (default from config)")
	outFile := flag.String("out", "", "Output file name (default results.json or <test case>_output.json)")
	maxDocs := flag.Int("max-docs", 0, "Maximum number of documents to process (default from config)")
	maxSections := flag.Int("max-sections", 0, "Number of sections to select (default from config)")
	minScore := flag.Float64("min-score", -1, "Minimum final score for selection (default from config)")
	detailed := flag.Bool("detailed", false, "Write the detailed output format")
	useLLM := flag.Bool("llm", false, "Refine sub-section text with Ollama")
	store := flag.Bool("store", false, "Store the run in PostgreSQL")
	browse := flag.Bool("tui", false, "Browse ranked sections interactively")
	writeReport := flag.Bool("report", false, "Also write a text report next to the output")
	flag.Parse()

	// Configuration: .env, config file, then environment overrides
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyEnv(cfg)
	applyFlags(cfg, *outDir, *maxDocs, *maxSections, *minScore, *useLLM, *store)

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	persona, job, name := *personaFlag, *jobFlag, *outFile
	var challenge *models.ChallengeInput
	if *inputJSON != "" {
		challenge, err = readChallenge(*inputJSON)
		if err != nil {
			log.Fatal().Err(err).Str("file", *inputJSON).Msg("failed to read challenge input")
		}
		if persona == "" {
			persona = challenge.Persona.Role
		}
		if job == "" {
			job = challenge.JobToBeDone.Task
		}
		if name == "" && challenge.ChallengeInfo.TestCaseName != "" {
			name = challenge.ChallengeInfo.TestCaseName + "_output.json"
		}
		if *docsDir == "" {
			*docsDir = filepath.Join(filepath.Dir(*inputJSON), "PDFs")
		}
	}
	if name == "" {
		name = "results.json"
	}
	if *docsDir == "" {
		log.Fatal().Msg("a documents directory is required (-docs or -input)")
	}

	// Load documents
	log.Info().Str("dir", *docsDir).Msg("loading documents")
	collection := processor.NewCollection(cfg.Pipeline.MaxPagesPerDoc, log)
	var docs []models.Document
	if challenge != nil {
		docs, err = collection.LoadChallenge(ctx, *challenge, *docsDir)
	} else {
		docs, err = collection.LoadDir(ctx, *docsDir, cfg.Pipeline.MaxDocuments)
	}
	if err != nil {
		log.Warn().Err(err).Int("loaded", len(docs)).Msg("some documents could not be loaded")
	}
	if ctx.Err() != nil {
		log.Fatal().Msg("interrupted")
	}

	// Analyze
	p := pipeline.New(
		pipeline.WithLogger(log),
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithTimeBudget(cfg.Pipeline.TimeBudget()),
	)
	res, err := p.Run(pipeline.Request{
		Documents:   docs,
		Persona:     persona,
		Job:         job,
		MaxSections: cfg.Pipeline.MaxSections,
		MinScore:    cfg.Pipeline.MinScore,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}
	run := output.NewRun(persona, job, docs, res)

	// Generate output
	genOpts := []output.Option{output.WithLogger(log)}
	if cfg.LLM.Enabled {
		timeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
		refiner := llm.NewOllamaRefiner(cfg.LLM.Model, timeout, log)
		refiner.MaxLength = cfg.Output.RefinedLength
		genOpts = append(genOpts, output.WithRefiner(refiner))
	}
	gen := output.NewGenerator(output.Options{
		PreviewLength:   cfg.Output.PreviewLength,
		RefinedLength:   cfg.Output.RefinedLength,
		SubsectionCount: cfg.Output.SubsectionCount,
	}, genOpts...)

	var doc any
	if *detailed {
		doc = gen.Detailed(ctx, run)
	} else {
		doc = gen.Challenge(ctx, run)
	}
	path, err := output.WriteJSON(cfg.Output.Dir, name, doc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to write output")
	}
	log.Info().Str("path", path).Msg("results saved")

	report := output.Report(run)
	if *writeReport {
		reportPath, err := output.WriteText(cfg.Output.Dir, "summary_report.txt", report)
		if err != nil {
			log.Error().Err(err).Msg("failed to write report")
		} else {
			log.Info().Str("path", reportPath).Msg("report saved")
		}
	}

	if cfg.Database.Enabled {
		storeRun(ctx, log, cfg.Database.URL, run)
	}

	if *browse {
		summary := fmt.Sprintf("%s | %s | %d candidates", persona, res.Context.JobIntent, len(res.Ranked))
		if _, err := tea.NewProgram(tui.New(res.Ranked, res.Context, summary), tea.WithAltScreen()).Run(); err != nil {
			log.Error().Err(err).Msg("browser failed")
		}
		return
	}

	fmt.Print(report)
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// applyFlags overrides config values with explicitly set flags
func applyFlags(cfg *config.AppConfig, outDir string, maxDocs, maxSections int, minScore float64, useLLM, store bool) {
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if maxDocs > 0 {
		cfg.Pipeline.MaxDocuments = maxDocs
	}
	if maxSections > 0 {
		cfg.Pipeline.MaxSections = maxSections
	}
	if minScore >= 0 {
		cfg.Pipeline.MinScore = minScore
	}
	if useLLM {
		cfg.LLM.Enabled = true
	}
	if store {
		cfg.Database.Enabled = true
	}
}

func readChallenge(path string) (*models.ChallengeInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in models.ChallengeInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &in, nil
}

func storeRun(ctx context.Context, log zerolog.Logger, url string, run output.Run) {
	db, err := database.NewDB(url)
	if err != nil {
		log.Error().Err(err).Msg("run not stored")
		return
	}
	defer db.Close()

	if err := db.Initialize(ctx); err != nil {
		log.Error().Err(err).Msg("failed to initialize database")
		return
	}
	rec := database.NewRunRecord(run.ID, run.Persona, run.Job, run.Result)
	if err := db.StoreRun(ctx, rec, run.Result.Selected); err != nil {
		log.Error().Err(err).Msg("failed to store run")
		return
	}
	log.Info().Str("run_id", run.ID.String()).Msg("run stored")
}
