package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Pointing/internal/adapters/http"
	"github.com/dkeye/Pointing/internal/adapters/stream"
	"github.com/dkeye/Pointing/internal/app"
	"github.com/dkeye/Pointing/internal/config"
	"github.com/dkeye/Pointing/internal/core"
	"github.com/dkeye/Pointing/internal/domain"
	"github.com/dkeye/Pointing/internal/storage/sqlite"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	gateway := app.NewGateway(store, cfg.GatewayBuffer)
	hub := app.NewHub()
	dispatcher := app.NewDispatcher(hub, gateway)
	scale := domain.DefaultScale()
	registry := app.NewRegistry(scale, dispatcher)

	restoreRooms(ctx, store, registry, scale, dispatcher)

	gatewayDone := make(chan struct{})
	go func() {
		gateway.Run(ctx)
		close(gatewayDone)
	}()

	ctl := &router.Controller{Registry: registry, Deleter: store}
	ws := &stream.Controller{Cfg: cfg, Registry: registry, Hub: hub}
	r := router.SetupRouter(ctx, cfg, ctl, ws)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Pointing server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	// The store closes only after the gateway has drained its queue.
	<-gatewayDone
	log.Info().Msg("Server exited gracefully")
}

// restoreRooms rehydrates the registry from durable state after a crash
// or restart. Recovery failures are logged, not fatal: the server can
// start with an empty registry.
func restoreRooms(ctx context.Context, store *sqlite.Store, registry *app.Registry, scale *domain.Scale, sink core.EventSink) {
	records, err := store.LoadRooms(ctx)
	if err != nil {
		log.Error().Err(err).Msg("room recovery failed")
		return
	}
	for _, rec := range records {
		room := rec.Room
		svc := core.Restore(&room, scale, sink, rec.Participants, rec.Votes, rec.Phase)
		registry.Restore(svc)
	}
	if len(records) > 0 {
		log.Info().Int("rooms", len(records)).Msg("restored rooms from store")
	}
}
