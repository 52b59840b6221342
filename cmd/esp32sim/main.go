package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/simulator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	latency := flag.Duration("latency", 0, "delay added to every /api response")
	failureRatio := flag.Float64("failure-ratio", 0, "share of /api requests answered with 503 (0..1)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log := logger.New(*level)
	defer func() { _ = log.Sync() }()

	if *failureRatio < 0 || *failureRatio > 1 {
		log.Fatalw("failure ratio out of range", "failure_ratio", *failureRatio)
	}

	srv := simulator.New(simulator.NewDevice(), simulator.Options{
		Latency:      *latency,
		FailureRatio: *failureRatio,
		Logger:       log,
	})

	go func() {
		log.Infow("esp32 simulator listening", "addr", *addr, "latency", latency.String(), "failure_ratio", *failureRatio)
		if err := srv.Run(*addr); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(srv, log)
}

// waitForShutdown blocks until SIGINT or SIGTERM, then lets in-flight
// requests complete.
func waitForShutdown(srv *simulator.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down simulator...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("simulator forced to shutdown", "err", err)
	}
}
