package main

import (
	"os"
	"path/filepath"
	"testing"

	"persona-doc-intel/internal/config"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, "", 0, 0, -1, false, false)
	if cfg.Pipeline.MinScore != 0.1 || cfg.Pipeline.MaxSections != 5 || cfg.LLM.Enabled {
		t.Errorf("unset flags changed config: %+v", cfg.Pipeline)
	}

	applyFlags(cfg, "results", 3, 8, 0, true, true)
	if cfg.Output.Dir != "results" || cfg.Pipeline.MaxDocuments != 3 || cfg.Pipeline.MaxSections != 8 {
		t.Errorf("flags not applied: %+v %+v", cfg.Output, cfg.Pipeline)
	}
	if cfg.Pipeline.MinScore != 0 || !cfg.LLM.Enabled || !cfg.Database.Enabled {
		t.Errorf("flags not applied: min=%v llm=%v db=%v", cfg.Pipeline.MinScore, cfg.LLM.Enabled, cfg.Database.Enabled)
	}
}

func TestReadChallenge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challenge1b_input.json")
	data := `{
  "challenge_info": {"challenge_id": "round_1b_002", "test_case_name": "travel_planner"},
  "documents": [{"filename": "South of France - Cities.pdf", "title": "South of France - Cities"}],
  "persona": {"role": "Travel Planner"},
  "job_to_be_done": {"task": "Plan a trip of 4 days for a group of 10 college friends."}
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	in, err := readChallenge(path)
	if err != nil {
		t.Fatalf("readChallenge: %v", err)
	}
	if in.Persona.Role != "Travel Planner" || in.ChallengeInfo.TestCaseName != "travel_planner" || len(in.Documents) != 1 {
		t.Errorf("challenge = %+v", in)
	}

	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readChallenge(path); err == nil {
		t.Error("expected parse error")
	}
}
