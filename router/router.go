// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/handlers"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/reports"
)

// NewRouter wires every endpoint onto a fresh mux. Each router owns its
// own metrics registry, served at /metrics.
func NewRouter(mgr *election.Manager, gw *reports.Gateway, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := middleware.NewMetrics(reg)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, metrics.Instrument(pattern, middleware.WithLogging(h)))
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(mgr, cfg)
	electionHandler := handlers.NewElectionHandler(mgr, cfg)
	votingHandler := handlers.NewVotingHandler(mgr, cfg)
	reportHandler := handlers.NewReportHandler(gw)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Users and administration
	handle("POST /users", userHandler.Register)
	handle("GET /users/me", userHandler.Me)
	handle("GET /users", userHandler.List)
	handle("POST /users/{identity}/role", userHandler.AssignRole)
	handle("POST /users/{identity}/approval", userHandler.SetApproval)
	handle("POST /users/{identity}/deactivate", userHandler.Deactivate)
	handle("POST /admin/delegate", userHandler.DelegateAdmin)
	handle("POST /admin/reporting-gateway", userHandler.BindGateway)

	// Election lifecycle
	handle("POST /elections", electionHandler.Create)
	handle("GET /elections", electionHandler.List)
	handle("POST /elections/close-expired", electionHandler.CloseExpired)
	handle("GET /elections/{id}", electionHandler.Get)
	handle("GET /elections/{id}/state", electionHandler.State)
	handle("POST /elections/{id}/open", electionHandler.Open)
	handle("POST /elections/{id}/close", electionHandler.Close)

	// Admission
	handle("POST /elections/{id}/members", electionHandler.Join)
	handle("GET /elections/{id}/members/pending", electionHandler.Pending)
	handle("POST /elections/{id}/members/{mid}/approval", electionHandler.Decide)

	// Voting and results
	handle("GET /elections/{id}/candidates", votingHandler.Candidates)
	handle("POST /elections/{id}/votes", votingHandler.Vote)
	handle("GET /elections/{id}/voters", votingHandler.Voters)
	handle("GET /elections/{id}/my-vote", votingHandler.MyVote)
	handle("GET /elections/{id}/results", votingHandler.Results)

	// Reporting gateway
	handle("GET /reports/{id}/voters", reportHandler.Voters)
	handle("GET /reports/{id}/participation", reportHandler.Participation)
	handle("GET /reports/{id}/results", reportHandler.Results)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-elect API v1"))
	})

	return middleware.CORS(mux)
}
