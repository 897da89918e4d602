package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nexusatelier/atelier-backend/internal/app"
)

func main() {
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Log.Sync()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		if err := a.Queue.Start(workerCtx); err != nil {
			a.Log.Error("queue workers stopped with error", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:    ":" + a.Cfg.Port,
		Handler: a.Router,
	}
	go func() {
		a.Log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.Log.Info("shutdown signal received")

	// Everything below shares one forced-shutdown budget.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Log.Warn("HTTP server shutdown interrupted", "error", err)
	}

	if err := a.Queue.Close(shutdownCtx); err != nil {
		a.Log.Warn("queue did not drain before deadline", "error", err)
	}
	stopWorkers()
	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
	}

	a.Log.Info("shutdown complete")
}
