package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	deviceURL := flag.String("device", "", "device base URL, e.g. http://10.0.0.122 (optional)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		DeviceURL:  *deviceURL,
		LogLevel:   *logLevel,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "kitchenhub: %v\n", err)
		return 1
	}
	return 0
}
