// Package httpapi wires the HTTP surface of the posting engine. Handlers stay
// thin and delegate business rules to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/finbooks/ledger/internal/service/directory"
	"github.com/finbooks/ledger/internal/service/posting"
	"github.com/finbooks/ledger/internal/service/report"
)

// Server wires handlers and middleware using Chi. It composes read (repo)
// and write (writer) dependencies through the three services.
type Server struct {
	directorySvc directory.Service
	postingSvc   posting.Service
	reportSvc    report.Service
	ready        ReadyChecker
	log          *slog.Logger
	currency     string
	rt           *chi.Mux
}

// New constructs the HTTP server with routes and middleware. currency is the
// display currency used when formatting minor-unit amounts.
func New(repo Repository, writer Writer, ready ReadyChecker, logger *slog.Logger, currency string) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", idempotencyKeyHeader},
	}))

	s := &Server{
		directorySvc: directory.New(repo, writer),
		postingSvc:   posting.New(repo, writer),
		reportSvc:    report.New(repo),
		ready:        ready,
		log:          logger,
		currency:     currency,
		rt:           r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and per-route middleware.
func (s *Server) routes() {
	// Entries
	s.rt.With(s.validatePostEntry()).Post("/v1/entries", s.postEntry)
	s.rt.Get("/v1/entries", s.listEntries)
	s.rt.Get("/v1/entries/{id}", s.getEntry)
	s.rt.Post("/v1/entries/{id}/reverse", s.reverseEntry)
	// Accounts
	s.rt.Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{code}", s.getAccount)
	s.rt.Delete("/v1/accounts/{code}", s.deleteAccount)
	s.rt.Get("/v1/accounts/{code}/balance", s.getAccountBalance)
	// Reports
	s.rt.Get("/v1/trial-balance", s.trialBalance)
	s.rt.Get("/v1/equation", s.equation)
	// Operational
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
