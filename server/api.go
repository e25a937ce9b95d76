// Package server is a REST backend for the portfolio resources. It backs the
// end-to-end tests and the demo command; the stores only see it through
// remote.HTTPSource.
package server

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"portfolio/record"
	"portfolio/store"
	"portfolio/synthetic"
)

// API serving properties, tenants, events, reminders, maintenance requests and market trends
type Api struct {
	Address string
	Port    int
	Router  *chi.Mux

	Properties  *Repository[record.Property]
	Tenants     *Repository[record.Tenant]
	Events      *Repository[record.Event]
	Maintenance *Repository[record.Maintenance]
	Trends      *Repository[record.MarketTrend]
	Reminders   *Repository[record.Reminder]

	// While set every request fails with 503, as a sleeping free tier host does.
	Down atomic.Bool
}

func New(address string, port int, db store.Store) *Api {
	a := &Api{
		Address:     address,
		Port:        port,
		Properties:  NewRepository[record.Property]("properties", db),
		Tenants:     NewRepository[record.Tenant]("tenants", db),
		Events:      NewRepository[record.Event]("events", db),
		Maintenance: NewRepository[record.Maintenance]("maintenance", db),
		Trends:      NewRepository[record.MarketTrend]("trends", db),
		Reminders:   NewRepository[record.Reminder]("reminders", db),
	}
	a.initRouter()
	return a
}

// Seed fills the repositories of the client kinds with the synthetic data set.
func (a *Api) Seed(now time.Time) error {
	if err := a.Properties.Seed(synthetic.Properties(now)); err != nil {
		return err
	}
	if err := a.Tenants.Seed(synthetic.Tenants(now)); err != nil {
		return err
	}
	if err := a.Events.Seed(synthetic.Events(now)); err != nil {
		return err
	}
	if err := a.Maintenance.Seed(synthetic.Maintenance(now)); err != nil {
		return err
	}
	return a.Trends.Seed(synthetic.Trends(now, nil))
}

// Start the API server
func (a *Api) StartRouter() error {
	addr := fmt.Sprintf("%s:%d", a.Address, a.Port)
	log.Info().Str("address", addr).Msg("api server listening")
	if err := http.ListenAndServe(addr, a.Router); err != nil {
		log.Err(err).Msg("api server error")
		return err
	}
	return nil
}

func (a *Api) initRouter() {
	a.Router = chi.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(requestLogger)
	a.Router.Use(a.outage)

	mountResource(a.Router, "/properties", a.Properties, true)
	mountResource(a.Router, "/tenants", a.Tenants, true)
	mountResource(a.Router, "/events", a.Events, true)
	mountResource(a.Router, "/reminders", a.Reminders, true)
	// the maintenance API has no delete endpoint
	mountResource(a.Router, "/maintenance", a.Maintenance, false)

	a.Router.Route("/market", func(r chi.Router) {
		r.Get("/trends", a.getTrendsHandler)
		r.Get("/trends/{id}", a.getTrendHandler)
		r.Post("/scrape", a.scrapeHandler)
	})
	a.Router.Get("/health", a.healthHandler)
}

func (a *Api) outage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Down.Load() && r.URL.Path != "/health" {
			writeError(w, http.StatusServiceUnavailable, "service is waking up, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request-id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status-code", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
