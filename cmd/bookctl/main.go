// Package main implements bookctl, a command-line client for searching the
// catalog and managing favorites without running the server.
package main

import (
	"book-explorer/internal/app"
	"book-explorer/internal/config"
	"context"
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env.local"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	if err := newRootCmd(os.Stdout, buildApp).Execute(); err != nil {
		os.Exit(1)
	}
}

// buildApp loads configuration and wires the application. Logs go to stderr
// so command output stays clean.
func buildApp(ctx context.Context, configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, config.NewLogger(cfg.Log, os.Stderr))
}
