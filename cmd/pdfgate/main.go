package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdfgate/pdfgate/internal/app"
	"github.com/pdfgate/pdfgate/internal/config"

	log "github.com/sirupsen/logrus"
)

// main runs the server and exits on unrecoverable errors.
func main() {
	if errRun := run(os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("server failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server until interrupted.
func run(args []string) error {
	fs := flag.NewFlagSet("pdfgate", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	cfg, errLoad := config.Load(config.ResolveConfigPath(*cfgPath))
	if errLoad != nil {
		return errLoad
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.RunServer(ctx, cfg)
}
