package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"portfolio/logger"
	"portfolio/server"
	"portfolio/store"
)

func main() {
	app := &cli.App{
		Name:  "portfolio api",
		Usage: "serve the properties, tenants, calendar, maintenance and market REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "host to serve the API on",
				Value:   "127.0.0.1",
				EnvVars: []string{"PORTFOLIO_API_HOST"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "port to serve the API on",
				Value:   8080,
				EnvVars: []string{"PORTFOLIO_API_PORT"},
			},
			&cli.StringFlag{
				Name:    "storeType",
				Aliases: []string{"st"},
				Usage:   `store type to keep records in, allowed values: "memory", "persisted", "sqlite"`,
				Value:   store.Memory,
				EnvVars: []string{"PORTFOLIO_API_STORE"},
				Action: func(ctx *cli.Context, v string) error {
					if v != store.Memory && v != store.Persisted && v != store.SQLite {
						return errors.New(`invalid storeType, allowed values: "memory", "persisted", "sqlite"`)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "database file of the persisted and sqlite stores",
				Value:   "portfolio-api.db",
				EnvVars: []string{"PORTFOLIO_API_DB"},
			},
			&cli.BoolFlag{
				Name:    "seed",
				Usage:   "fill the store with demo records on startup",
				EnvVars: []string{"PORTFOLIO_API_SEED"},
			},
			&cli.BoolFlag{
				Name:  "down",
				Usage: "answer every request with 503, to exercise client fallbacks",
			},
			&cli.StringFlag{
				Name:    "logLevel",
				Aliases: []string{"l"},
				Usage:   fmt.Sprintf("minimum log level, allowed values: %s", strings.Join(logger.Levels, ", ")),
				Value:   "info",
				EnvVars: []string{"PORTFOLIO_LOG_LEVEL"},
				Action: func(ctx *cli.Context, v string) error {
					if !logger.ValidLevel(v) {
						return fmt.Errorf("invalid logLevel, allowed values: %s", strings.Join(logger.Levels, ", "))
					}
					return nil
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			logger.Setup(ctx.String("logLevel"), "portfolio-api")
			return startApi(ctx.String("host"), ctx.Int("port"), ctx.String("storeType"), ctx.String("db"), ctx.Bool("seed"), ctx.Bool("down"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("portfolio api stopped")
	}
}

func startApi(host string, port int, storeType, dbPath string, seed, down bool) error {
	db, err := store.New(storeType, dbPath, "records")
	if err != nil {
		return fmt.Errorf("store creation failed: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Err(err).Msg("failed to close store")
		}
	}()

	api := server.New(host, port, db)
	if seed {
		if err := api.Seed(time.Now()); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Info().Msg("store seeded with demo records")
	}
	api.Down.Store(down)

	return api.StartRouter()
}
