package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"gamelounge/api"
	"gamelounge/engine"
	"gamelounge/feed"
	"gamelounge/identity"
	"gamelounge/moderation"
	"gamelounge/presence"
	"gamelounge/runtime/workers"
	"gamelounge/search"
	"gamelounge/services"
	"gamelounge/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Stores: SQLite for rows, Badger for presence, Bluge for search
	db, err := store.Open(config.SQLitePath)
	if err != nil {
		return fmt.Errorf("store opening failed: %w", err)
	}

	badgerDB, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("presence store opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = badgerDB.Close()
	}()

	index, err := search.Open(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Change feed & repositories
	hub := feed.NewHub(log, config.BufferSize)
	messageRepository := store.NewMessageRepository(db, hub, log)
	threadRepository := store.NewThreadRepository(db, log)
	dmRepository := store.NewDMRepository(db, hub, log)
	presenceRepository := store.NewPresenceRepository(badgerDB, hub, log)
	profileRepository := store.NewProfileRepository(db, log)

	// 4. Moderation gate
	classifier, err := moderation.NewClassifier(moderation.DefaultBannedTerms)
	if err != nil {
		return fmt.Errorf("classifier build failed: %w", err)
	}
	gate := moderation.NewGate(classifier, log)

	// 5. Engines & presence
	hydrator := identity.NewHydrator(profileRepository, log)
	channelEngine := engine.NewChannelEngine(gate, messageRepository, hub, log)
	dmEngine := engine.NewDMEngine(threadRepository, dmRepository, hub, hydrator, log)
	tracker := presence.NewTracker(presenceRepository, log)
	aggregator := presence.NewAggregator(presenceRepository, hub, log)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := channelEngine.Load(ctx); err != nil {
		return fmt.Errorf("initial lounge load failed: %w", err)
	}

	// 7. Supervised workers
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(
		channelEngine,
		aggregator,
		search.NewSinkWorker(index, hub, log),
		workers.NewHealthWorker(log, config.HealthInterval),
	)
	go supervisor.Run(ctx)

	// 8. HTTP server
	verifier := identity.NewVerifier(config.JWTSecret)
	server := api.NewServer(
		log, verifier, hydrator, tracker,
		services.NewLoungeService(channelEngine, index),
		services.NewDMService(dmEngine),
		services.NewPresenceService(tracker, presenceRepository, aggregator),
	)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Router()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	supervisor.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
