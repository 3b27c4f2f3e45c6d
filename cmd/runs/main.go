package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"persona-doc-intel/internal/config"
	"persona-doc-intel/internal/database"
	"persona-doc-intel/internal/logger"
)

const (
	DefaultListLimit = 20
)

func main() {
	// Parse command line flags
	pgConnString := flag.String("pg", "", "PostgreSQL connection string (default from config)")
	interactive := flag.Bool("i", false, "Run in interactive mode")
	runFlag := flag.String("run", "", "Show the sections of a run")
	docFlag := flag.String("doc", "", "Search stored sections by document name")
	limit := flag.Int("limit", DefaultListLimit, "Maximum number of runs or sections to show")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, _, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyEnv(cfg)
	if *pgConnString != "" {
		cfg.Database.URL = *pgConnString
	}

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	// Create context
	ctx := context.Background()

	// Connect to database
	db, err := database.NewDB(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if *interactive {
		runInteractiveMode(ctx, db, *limit)
		return
	}

	cmd := command{name: "runs"}
	switch {
	case *runFlag != "":
		cmd = command{name: "run", arg: *runFlag}
	case *docFlag != "":
		cmd = command{name: "doc", arg: *docFlag}
	}
	out, err := execute(ctx, db, cmd, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("query failed")
	}
	fmt.Print(out)
}

type command struct {
	name string
	arg  string
}

// parseCommand reads one interactive line. ok is false for input that is not a command.
func parseCommand(input string) (cmd command, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	name = strings.ToLower(name)
	switch name {
	case "runs", "run", "doc", "help":
		return command{name: name, arg: strings.TrimSpace(arg)}, true
	}
	return command{}, false
}

func runInteractiveMode(ctx context.Context, db *database.DB, limit int) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Stored analysis runs (type 'exit' to quit, /help for commands)")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		input := scanner.Text()
		if strings.ToLower(input) == "exit" || strings.ToLower(input) == "quit" {
			break
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		cmd, ok := parseCommand(input)
		if !ok {
			// Bare text searches by document name
			cmd = command{name: "doc", arg: strings.TrimSpace(input)}
		}

		out, err := execute(ctx, db, cmd, limit)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Print(out)
	}
}

func execute(ctx context.Context, db *database.DB, cmd command, limit int) (string, error) {
	switch cmd.name {
	case "help":
		return helpText, nil
	case "runs":
		runs, err := db.ListRuns(ctx, limit)
		if err != nil {
			return "", err
		}
		return formatRuns(runs), nil
	case "run":
		id, err := uuid.Parse(cmd.arg)
		if err != nil {
			return "", fmt.Errorf("invalid run id %q", cmd.arg)
		}
		run, err := db.GetRun(ctx, id)
		if err != nil {
			return "", err
		}
		sections, err := db.QueryRunSections(ctx, id)
		if err != nil {
			return "", err
		}
		return formatRun(run) + formatSections(sections), nil
	case "doc":
		if cmd.arg == "" {
			return "", fmt.Errorf("document name is required")
		}
		sections, err := db.QuerySectionsByDocument(ctx, cmd.arg, limit)
		if err != nil {
			return "", err
		}
		return formatSections(sections), nil
	}
	return "", fmt.Errorf("unknown command %q", cmd.name)
}

const helpText = `Commands:
  /runs           list recent runs
  /run <id>       show a run and its sections
  /doc <name>     search sections by document name
  <text>          same as /doc <text>
`

func formatRuns(runs []database.RunRecord) string {
	if len(runs) == 0 {
		return "No stored runs.\n"
	}
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(fmt.Sprintf("%s  %s  %-22s %-28s %d sections, %d documents\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Intent, truncate(r.Persona, 28), r.Sections, len(r.Documents)))
	}
	return sb.String()
}

func formatRun(r database.RunRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run %s (%s)\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("  Persona: %s\n  Job: %s\n", r.Persona, r.Job))
	sb.WriteString(fmt.Sprintf("  Intent: %s, domain: %s, elapsed: %v\n", r.Intent, r.Domain, r.Elapsed))
	sb.WriteString(fmt.Sprintf("  Documents: %s\n\n", strings.Join(r.Documents, ", ")))
	return sb.String()
}

func formatSections(sections []database.StoredSection) string {
	if len(sections) == 0 {
		return "No sections found.\n"
	}

	var sb strings.Builder
	for _, s := range sections {
		sb.WriteString(fmt.Sprintf("  %d. %s [%s, Page: %d] score %.3f (%s)\n",
			s.Rank, s.Title, s.Document, s.PageNumber, s.FinalScore, s.SectionType))

		names := make([]string, 0, len(s.Factors))
		for name := range s.Factors {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%.2f", name, s.Factors[name]))
		}
		if len(parts) > 0 {
			sb.WriteString("     " + strings.Join(parts, " ") + "\n")
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
