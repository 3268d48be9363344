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

	"hrm-e2e/internal/infrastructure/hrmstub"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	username := flag.String("username", hrmstub.DefaultConfig().Username, "accepted username")
	password := flag.String("password", hrmstub.DefaultConfig().Password, "accepted password")
	flag.Parse()

	logger := hrmstub.NewLogger("hrmstub")

	cfg := hrmstub.DefaultConfig()
	cfg.Username = *username
	cfg.Password = *password

	srv := &http.Server{
		Addr:              *addr,
		Handler:           hrmstub.New(cfg, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", *addr).Msg("hrm stub listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
