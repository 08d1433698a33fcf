package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightdash/internal/api"
	"flightdash/internal/config"
	"flightdash/internal/dashboard"
	"flightdash/internal/engine"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/mattn/go-isatty"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lvl, _ := cfg.Level()
	log.SetLevel(lvl)

	// 1. Initialize Echo (Starts Instantly)
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(lvl)
	if l, ok := e.Logger.(*log.Logger); ok && !isatty.IsTerminal(os.Stdout.Fd()) {
		l.DisableColor()
	}
	e.JSONSerializer = api.JSONSerializer{}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	// 2. Initialize Handler with NIL data
	// The API is live but answers 503 until the dataset is in memory.
	svc := dashboard.NewService(dashboard.NewBinder(), cfg.SessionTTL)
	h := api.NewHandler(nil, svc)
	h.RegisterRoutes(e)

	// 3. Load the dataset in the background. A load failure is fatal.
	go func() {
		log.Infof("BACKGROUND: loading %s", cfg.DataPath)
		t0 := time.Now()

		ds, err := engine.Load(cfg.DataPath, engine.WithSheet(cfg.Sheet))
		if err != nil {
			e.Logger.Fatalf("BACKGROUND: %v", err)
		}
		h.SetData(ds)

		log.Infof("BACKGROUND: dataset ready in %v", time.Since(t0))
	}()

	// 4. Start Server
	go func() {
		var err error
		if cfg.TLSHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.TLSHost)
			e.AutoTLSManager.Cache = autocert.DirCache(cfg.CertCache)
			log.Infof("Server ready on https://%s (data loading in background...)", cfg.TLSHost)
			err = e.StartAutoTLS(":443")
		} else {
			log.Infof("Server ready on %s (data loading in background...)", cfg.Addr)
			err = e.Start(cfg.Addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal(err)
	}
}
