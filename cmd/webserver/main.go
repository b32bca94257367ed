package main

import (
	"context"
	"crypto/rand"
	"flag"
	"net/http"
	"os"
	"time"

	"textback"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		dbPath     = flag.String("db", "", "Corpus database path (overrides config)")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	log := textback.Logger()

	cfg, err := textback.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *verbose {
		cfg.Verbose = true
	}
	textback.SetVerbose(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	engine, err := textback.OpenEngine(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	defer engine.Close()

	sessionKey := []byte(cfg.Server.SessionKey)
	if len(sessionKey) == 0 {
		log.Warnf("No session key configured; sessions will not survive a restart")
		sessionKey = make([]byte, 32)
		if _, err := rand.Read(sessionKey); err != nil {
			log.Fatalf("Failed to generate session key: %v", err)
		}
	}
	store := sessions.NewCookieStore(sessionKey)
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	server := NewServer(engine.Generator, store, newLimiterPool(cfg.Server.RateLimit, cfg.Server.Burst))
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("Starting server on %s", cfg.Server.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
