package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"portfolio/logger"
	"portfolio/portfolio"
	"portfolio/server"
	"portfolio/store"
)

// Runs a seeded in-memory API and a client that keeps its cache fresh, in one
// process.
func main() {
	logger.SetupConsole(os.Getenv("PORTFOLIO_LOG_LEVEL"), "portfolio-demo")

	api, apiAddr := startApi()
	go func() {
		if err := api.StartRouter(); err != nil {
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := portfolio.New(portfolio.Config{
		BaseURL: "http://" + apiAddr,
		Db:      store.NewMemoryStore(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("portfolio creation failed")
	}
	// give the listener a moment before the first load
	time.Sleep(100 * time.Millisecond)
	if err := p.LoadAll(ctx, false); err != nil {
		log.Err(err).Msg("initial load failed")
	}
	log.Info().Interface("summary", p.Summary()).Msg("portfolio loaded")

	p.AutoRefresh(ctx)
}

func startApi() (*server.Api, string) {
	host := os.Getenv("PORTFOLIO_API_HOST")
	port, _ := strconv.Atoi(os.Getenv("PORTFOLIO_API_PORT"))
	if port == 0 {
		port = 8080
	}

	api := server.New(host, port, store.NewMemoryStore())
	if err := api.Seed(time.Now()); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	if host == "" {
		host = "127.0.0.1"
	}
	return api, fmt.Sprintf("%s:%d", host, port)
}
