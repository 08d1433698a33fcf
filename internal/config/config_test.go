package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}

func TestLoadFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flightdash.toml")
	content := `
addr = ":9000"
data = "/srv/flights.csv"
log_level = "debug"
rate_limit = 5.5
session_ttl = "10m"
cors_origins = ["https://example.org"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load([]string{"-config", path, "-addr", ":7000"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("Flag should override file: %q", cfg.Addr)
	}
	if cfg.DataPath != "/srv/flights.csv" || cfg.RateLimit != 5.5 || cfg.SessionTTL != 10*time.Minute {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://example.org" {
		t.Errorf("Unexpected origins %v", cfg.CORSOrigins)
	}
	if lvl, _ := cfg.Level(); lvl != log.DEBUG {
		t.Errorf("Expected DEBUG, got %v", lvl)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	if _, err := Load([]string{"-log-level", "chatty"}); err == nil {
		t.Error("Expected unknown log level to fail")
	}
	if _, err := Load([]string{"-rate-limit", "-1"}); err == nil {
		t.Error("Expected negative rate limit to fail")
	}
	if _, err := Load([]string{"-config", filepath.Join(t.TempDir(), "absent.toml")}); err == nil {
		t.Error("Expected missing config file to fail")
	}
	cfg, err := Load([]string{"-cors-origins", "a.example, b.example,"})
	if err != nil || len(cfg.CORSOrigins) != 2 {
		t.Errorf("Unexpected origins %v (%v)", cfg.CORSOrigins, err)
	}
}

func TestLoadHelpPrintsUsage(t *testing.T) {
	var buf bytes.Buffer
	usageOutput = &buf
	defer func() { usageOutput = os.Stderr }()

	_, err := Load([]string{"-h"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("Expected flag.ErrHelp, got %v", err)
	}
	for _, want := range []string{"Usage of flightdash", "-data", "-session-ttl"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Usage text missing %q:\n%s", want, buf.String())
		}
	}
}
