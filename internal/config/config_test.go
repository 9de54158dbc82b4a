package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/byteowlz/strle/internal/text"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Extraction.CSVColumnIndex != -1 {
		t.Errorf("expected csv_column_index -1, got %d", cfg.Extraction.CSVColumnIndex)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("expected default format 'text', got %q", cfg.Output.DefaultFormat)
	}
	if cfg.SortMode() != text.SortOff {
		t.Errorf("expected sort off, got %q", cfg.SortMode())
	}
	if !cfg.Safety.Enabled {
		t.Error("expected safety enabled by default")
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "nope.toml") {
		t.Errorf("expected error to name the file, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[extraction]
csv_has_header = true
csv_column_index = 2
repair_json = true

[csv]
streaming_enabled = true

[postprocess]
dedupe_enabled = true
sort_enabled = true
sort_mode = "length-desc"

[output]
default_format = "yaml"
separator = "==="
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Extraction.CSVHasHeader || cfg.Extraction.CSVColumnIndex != 2 || !cfg.Extraction.RepairJSON {
		t.Errorf("extraction section not loaded: %+v", cfg.Extraction)
	}
	if !cfg.CSV.StreamingEnabled {
		t.Error("expected streaming enabled")
	}
	if !cfg.PostProcess.DedupeEnabled {
		t.Error("expected dedupe enabled")
	}
	if cfg.SortMode() != text.SortLengthDesc {
		t.Errorf("expected length-desc, got %q", cfg.SortMode())
	}
	if cfg.Output.DefaultFormat != "yaml" || cfg.Output.Separator != "===" {
		t.Errorf("output section not loaded: %+v", cfg.Output)
	}
	// untouched sections keep their defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %q", cfg.Logging.Level)
	}
}

func TestLoad_Normalize(t *testing.T) {
	path := writeConfig(t, `
[extraction]
csv_column_index = -7

[postprocess]
sort_enabled = true
sort_mode = "sideways"

[network]
timeout = 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Extraction.CSVColumnIndex != -1 {
		t.Errorf("expected negative column index to become -1, got %d", cfg.Extraction.CSVColumnIndex)
	}
	if cfg.PostProcess.SortMode != string(text.SortOff) {
		t.Errorf("expected unknown sort mode to become off, got %q", cfg.PostProcess.SortMode)
	}
	if cfg.Network.Timeout != 30 {
		t.Errorf("expected timeout reset to 30, got %d", cfg.Network.Timeout)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
[postprocess]
sort_enabled = true
sort_mode = "alpha-asc"
`)
	t.Setenv("STRLE_POSTPROCESS_SORT_MODE", "alpha-desc")
	t.Setenv("STRLE_EXTRACTION_CSV_HAS_HEADER", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SortMode() != text.SortAlphaDesc {
		t.Errorf("expected env to override sort mode, got %q", cfg.SortMode())
	}
	if !cfg.Extraction.CSVHasHeader {
		t.Error("expected env to enable csv_has_header")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "[extraction\ncsv_has_header = ")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestSortMode_DisabledIgnoresMode(t *testing.T) {
	cfg := Default()
	cfg.PostProcess.SortMode = string(text.SortLengthAsc)
	if cfg.SortMode() != text.SortOff {
		t.Errorf("expected off while sorting disabled, got %q", cfg.SortMode())
	}
}

func TestCreateExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "strle", "config.toml")
	if err := Default().CreateExampleConfig(path); err != nil {
		t.Fatalf("CreateExampleConfig failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	want := Default()
	if cfg.Extraction != want.Extraction || cfg.PostProcess != want.PostProcess || cfg.Output != want.Output {
		t.Errorf("example config differs from defaults: %+v", cfg)
	}
	if cfg.Safety != want.Safety || cfg.Logging != want.Logging {
		t.Errorf("example config differs from defaults: %+v", cfg)
	}
}
