package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stratalog-io/welldex/params"
)

func TestLoadFullConfig(t *testing.T) {
	yaml := `deck: ./decks/block-7.yaml
parallel: 8

params:
  completion.perforation_density: 12
  completion.perforation_diameter: 0.011
  interval.min_net_pay: 2.0
  units.length_factor: 1.0
  rock.band_permeability.upper: 150

search:
  radius: 750
  max_expansions: 5

storage:
  dataset: welldex
  backend: s3
  path: my-bucket/prefix
  region: us-east-1
  endpoint: https://example.com
  s3_path_style: true

policy:
  name: buffered
  buffer_records: 1000
  buffer_bytes: 10485760

adapter:
  type: webhook
  url: https://hooks.example.com/welldex
  headers:
    Authorization: Bearer token123
  timeout: 10s
  retries: 3

solver:
  stream: ./out/controls.bin
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	assertEqual(t, "deck", cfg.Deck, "./decks/block-7.yaml")
	if cfg.Parallel != 8 {
		t.Errorf("parallel: got %d, want 8", cfg.Parallel)
	}

	if cfg.Params["completion.perforation_density"] != 12 {
		t.Errorf("params density: got %g, want 12", cfg.Params["completion.perforation_density"])
	}
	if cfg.Search.Radius != 750 || cfg.Search.MaxExpansions != 5 {
		t.Errorf("search: got %g/%d, want 750/5", cfg.Search.Radius, cfg.Search.MaxExpansions)
	}

	assertEqual(t, "storage.backend", cfg.Storage.Backend, "s3")
	assertEqual(t, "storage.path", cfg.Storage.Path, "my-bucket/prefix")
	assertEqual(t, "storage.region", cfg.Storage.Region, "us-east-1")
	assertEqual(t, "storage.endpoint", cfg.Storage.Endpoint, "https://example.com")
	if !cfg.Storage.S3PathStyle {
		t.Error("expected storage.s3_path_style=true")
	}

	assertEqual(t, "policy.name", cfg.Policy.Name, "buffered")
	if cfg.Policy.BufferRecords != 1000 {
		t.Errorf("expected buffer_records=1000, got %d", cfg.Policy.BufferRecords)
	}
	if cfg.Policy.BufferBytes != 10485760 {
		t.Errorf("expected buffer_bytes=10485760, got %d", cfg.Policy.BufferBytes)
	}

	assertEqual(t, "adapter.type", cfg.Adapter.Type, "webhook")
	assertEqual(t, "adapter.url", cfg.Adapter.URL, "https://hooks.example.com/welldex")
	assertEqual(t, "adapter.header", cfg.Adapter.Headers["Authorization"], "Bearer token123")
	if cfg.Adapter.Timeout.Duration != 10*time.Second {
		t.Errorf("adapter.timeout: got %s, want 10s", cfg.Adapter.Timeout.Duration)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 3 {
		t.Errorf("adapter.retries: got %v, want 3", cfg.Adapter.Retries)
	}

	assertEqual(t, "solver.stream", cfg.Solver.Stream, "./out/controls.bin")
}

func TestLoadEmptyConfig(t *testing.T) {
	path := writeTemp(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Deck != "" || cfg.Policy.Name != "" || len(cfg.Params) != 0 {
		t.Errorf("empty config should yield zero values, got %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTemp(t, "params: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected YAML error")
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("WELLDEX_BUCKET", "prod-bucket")
	yaml := `storage:
  path: ${WELLDEX_BUCKET:-dev-bucket}/wells
  region: ${WELLDEX_REGION:-eu-north-1}
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "storage.path", cfg.Storage.Path, "prod-bucket/wells")
	assertEqual(t, "storage.region", cfg.Storage.Region, "eu-north-1")
}

func TestInvalidDuration(t *testing.T) {
	yaml := `adapter:
  timeout: banana
`
	if _, err := Load(writeTemp(t, yaml)); err == nil {
		t.Error("expected duration parse error")
	}
}

func TestBuildParams(t *testing.T) {
	cfg := &Config{
		Params: map[string]float64{
			string(params.KeyMinNetPay):        2.5,
			string(params.KeyLengthUnitFactor): 1.0,
		},
		Search: SearchConfig{Radius: 900, MaxExpansions: 6},
	}

	ps, err := cfg.BuildParams()
	if err != nil {
		t.Fatalf("BuildParams failed: %v", err)
	}

	if v, err := ps.Require(params.KeyMinNetPay); err != nil || v != 2.5 {
		t.Errorf("min net pay = %g (%v), want 2.5", v, err)
	}
	if ps.SearchRadius() != 900 || ps.MaxExpansions() != 6 {
		t.Errorf("search tuning = %g/%d, want 900/6", ps.SearchRadius(), ps.MaxExpansions())
	}

	// Absent keys still fail fast downstream.
	if _, err := ps.Require(params.KeyPerforationDensity); !params.IsMissing(err) {
		t.Errorf("expected MissingError for unset key, got %v", err)
	}
}

func TestBuildParamsRejectsUnknownKey(t *testing.T) {
	cfg := &Config{Params: map[string]float64{"completion.perforation_densty": 12}}
	if _, err := cfg.BuildParams(); err == nil || !strings.Contains(err.Error(), "unknown engineering parameter") {
		t.Errorf("expected unknown-key error, got %v", err)
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "welldex.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}
