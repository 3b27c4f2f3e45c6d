package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.MaxSections != 5 || cfg.Pipeline.MinScore != 0.1 {
		t.Errorf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.TimeBudget() != 60*time.Second {
		t.Errorf("time budget = %v", cfg.Pipeline.TimeBudget())
	}
	if cfg.Output.RefinedLength != 500 || cfg.Output.PreviewLength != 200 {
		t.Errorf("unexpected output defaults: %+v", cfg.Output)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "pipeline:\n  max_sections: 8\nllm:\n  enabled: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.MaxSections != 8 {
		t.Errorf("max_sections = %d, want 8", cfg.Pipeline.MaxSections)
	}
	if cfg.Pipeline.MaxPagesPerDoc != 50 || cfg.Output.SubsectionCount != 5 {
		t.Errorf("defaults not applied: %+v %+v", cfg.Pipeline, cfg.Output)
	}
	if cfg.LLM.Model != "llama3" || cfg.LLM.TimeoutSecs != 30 {
		t.Errorf("llm defaults not applied: %+v", cfg.LLM)
	}
}

func TestLoadFillsLLMDefaultsWhenDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pipeline:\n  workers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Enabled {
		t.Fatal("llm should stay disabled")
	}
	// Enabling later, as the -llm flag does, must find a usable model.
	cfg.LLM.Enabled = true
	if cfg.LLM.Model != "llama3" || cfg.LLM.TimeoutSecs != 30 {
		t.Errorf("llm defaults not applied: %+v", cfg.LLM)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pipeline: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Server.Addr = ":9090"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.Addr != ":9090" {
		t.Errorf("addr = %q", loaded.Server.Addr)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "postgres://test@localhost/db")
	t.Setenv(EnvOllamaModel, "mistral")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvMaxSections, "12")

	cfg := Default()
	ApplyEnv(cfg)

	if !cfg.Database.Enabled || cfg.Database.URL != "postgres://test@localhost/db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if !cfg.LLM.Enabled || cfg.LLM.Model != "mistral" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Logging.Level != "debug" || cfg.Pipeline.MaxSections != 12 {
		t.Errorf("level %q, max sections %d", cfg.Logging.Level, cfg.Pipeline.MaxSections)
	}
}

func TestLoadEnvIgnoresMissingFile(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadEnv: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DOCINTEL_TEST_ONLY_VALUE=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCINTEL_TEST_ONLY_VALUE", "")
	os.Unsetenv("DOCINTEL_TEST_ONLY_VALUE")
	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("DOCINTEL_TEST_ONLY_VALUE"); got != "loaded" {
		t.Errorf("env value = %q", got)
	}
}
