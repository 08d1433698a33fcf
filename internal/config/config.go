package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/labstack/gommon/log"
)

// usageOutput receives the flag usage text when -h is given.
var usageOutput io.Writer = os.Stderr

type Config struct {
	Addr        string        `toml:"addr"`
	DataPath    string        `toml:"data"`
	Sheet       string        `toml:"sheet"`
	LogLevel    string        `toml:"log_level"`
	RateLimit   float64       `toml:"rate_limit"` // requests/s per client, 0 disables
	SessionTTL  time.Duration `toml:"session_ttl"`
	CORSOrigins []string      `toml:"cors_origins"`
	TLSHost     string        `toml:"tls_host"` // enables automatic TLS
	CertCache   string        `toml:"cert_cache"`
}

func Default() Config {
	return Config{
		Addr:        ":8080",
		DataPath:    "Flight_Dataset_last_version.xlsx",
		LogLevel:    "info",
		RateLimit:   20,
		SessionTTL:  30 * time.Minute,
		CORSOrigins: []string{"*"},
		CertCache:   ".certs",
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// -config (if any), then any flags given explicitly on the command line.
func Load(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("flightdash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "Path to a TOML config file")
	addr := fs.String("addr", cfg.Addr, "Listen address")
	data := fs.String("data", cfg.DataPath, "Dataset path (.xlsx, .csv or .parquet)")
	sheet := fs.String("sheet", cfg.Sheet, "Worksheet name for .xlsx input (default: first sheet)")
	level := fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	rateLimit := fs.Float64("rate-limit", cfg.RateLimit, "Requests per second per client (0 disables)")
	ttl := fs.Duration("session-ttl", cfg.SessionTTL, "Idle time before a viewer session is dropped")
	origins := fs.String("cors-origins", strings.Join(cfg.CORSOrigins, ","), "Comma-separated allowed CORS origins")
	tlsHost := fs.String("tls-host", cfg.TLSHost, "Host name for automatic TLS (empty serves plain HTTP)")
	certCache := fs.String("cert-cache", cfg.CertCache, "Directory for cached TLS certificates")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(usageOutput)
			fmt.Fprintf(usageOutput, "Usage of %s:\n", fs.Name())
			fs.PrintDefaults()
		}
		return cfg, err
	}

	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", *configPath, err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "data":
			cfg.DataPath = *data
		case "sheet":
			cfg.Sheet = *sheet
		case "log-level":
			cfg.LogLevel = *level
		case "rate-limit":
			cfg.RateLimit = *rateLimit
		case "session-ttl":
			cfg.SessionTTL = *ttl
		case "cors-origins":
			cfg.CORSOrigins = splitList(*origins)
		case "tls-host":
			cfg.TLSHost = *tlsHost
		case "cert-cache":
			cfg.CertCache = *certCache
		}
	})

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data path is required")
	}
	if c.Addr == "" && c.TLSHost == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0, got %v", c.RateLimit)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must be >= 0, got %v", c.SessionTTL)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel onto the gommon/echo logger levels.
func (c Config) Level() (log.Lvl, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log level %q", c.LogLevel)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
