package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/noah-isme/bus-fleet-api/migrations"
	"github.com/noah-isme/bus-fleet-api/pkg/config"
	"github.com/noah-isme/bus-fleet-api/pkg/database"
	"github.com/noah-isme/bus-fleet-api/pkg/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: migrate <command> [args]\n\ncommands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version\n")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(context.Background(), cfg.Database, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		logr.Sugar().Fatalw("unsupported dialect", "error", err)
	}

	command := flag.Arg(0)
	logr.Sugar().Infow("running migrations", "command", command, "database", cfg.Database.Name)
	if err := goose.Run(command, db.DB, ".", flag.Args()[1:]...); err != nil {
		logr.Sugar().Fatalw("migration failed", "command", command, "error", err)
	}
}
