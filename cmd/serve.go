package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sales-dashboard/internal/analytics"
	"github.com/sells-group/sales-dashboard/internal/config"
	"github.com/sells-group/sales-dashboard/internal/model"
	"github.com/sells-group/sales-dashboard/internal/monitoring"
	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		s := &server{api: newAPIClient(), cfg: cfg}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(s),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// server holds the handler dependencies.
type server struct {
	api salesapi.Client
	cfg *config.Config
}

// newRouter builds the chi router with all dashboard routes.
func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(monitoring.Middleware)

	r.Get("/health", s.handleHealth)
	r.Get("/api/leads", s.handleLeads)
	r.Get("/api/dashboard", s.handleDashboard)
	r.Get("/api/analytics", s.handleAnalytics)
	r.Get("/api/use-cases", s.handleUseCases)
	r.Get("/api/overview", s.handleOverview)
	r.Post("/api/match", s.handleMatch)
	r.Post("/api/score", s.handleScore)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fetchLeads pulls and normalizes the lead collection for a request.
func (s *server) fetchLeads(r *http.Request) ([]model.Lead, error) {
	wire, err := s.api.Leads(r.Context())
	if err != nil {
		return nil, err
	}
	return model.FromAPIAll(wire), nil
}

// handleLeads returns the lead list, optionally filtered by ?search= and
// ?band= (all, high, medium, low).
func (s *server) handleLeads(w http.ResponseWriter, r *http.Request) {
	band, err := analytics.ParseBand(r.URL.Query().Get("band"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	leads, err := s.fetchLeads(r)
	if err != nil {
		zap.L().Error("fetch leads", zap.Error(err))
		writeError(w, http.StatusBadGateway, "lead source unavailable")
		return
	}

	filtered := analytics.Filter(leads, r.URL.Query().Get("search"), band)
	writeJSON(w, http.StatusOK, map[string]any{
		"leads": filtered,
		"total": len(filtered),
	})
}

// handleDashboard returns the KPI summary plus the ranked and revenue views.
func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	leads, err := s.fetchLeads(r)
	if err != nil {
		zap.L().Error("fetch leads", zap.Error(err))
		writeError(w, http.StatusBadGateway, "lead source unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":         analytics.Summarize(leads),
		"top_leads":       analytics.TopLeads(leads, s.cfg.Dashboard.TopN),
		"revenue_by_tier": analytics.RevenueByTier(leads),
	})
}

// handleAnalytics returns the distribution views: histogram, tiers, funnel,
// and per-segment rollup.
func (s *server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	leads, err := s.fetchLeads(r)
	if err != nil {
		zap.L().Error("fetch leads", zap.Error(err))
		writeError(w, http.StatusBadGateway, "lead source unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"histogram": analytics.Histogram(leads),
		"tiers":     analytics.Tiers(leads),
		"funnel":    analytics.Funnel(len(leads)),
		"segments":  analytics.SegmentRollup(leads),
	})
}

func (s *server) handleUseCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.api.UseCases(r.Context())
	if err != nil {
		zap.L().Error("fetch use cases", zap.Error(err))
		writeError(w, http.StatusBadGateway, "use-case catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"use_cases": cases})
}

// handleOverview fetches leads and the use-case catalog concurrently and
// returns a combined snapshot for the dashboard's first paint.
func (s *server) handleOverview(w http.ResponseWriter, r *http.Request) {
	var (
		leads []model.Lead
		cases []salesapi.UseCase
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		wire, err := s.api.Leads(ctx)
		if err != nil {
			return err
		}
		leads = model.FromAPIAll(wire)
		return nil
	})
	g.Go(func() error {
		var err error
		cases, err = s.api.UseCases(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("fetch overview", zap.Error(err))
		writeError(w, http.StatusBadGateway, "backend unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":   analytics.Summarize(leads),
		"histogram": analytics.Histogram(leads),
		"tiers":     analytics.Tiers(leads),
		"funnel":    analytics.Funnel(len(leads)),
		"top_leads": analytics.TopLeads(leads, s.cfg.Dashboard.TopN),
		"use_cases": cases,
	})
}

func (s *server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var in salesapi.LeadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	match, err := s.api.MatchUseCase(r.Context(), in)
	if err != nil {
		zap.L().Error("match use case", zap.Error(err))
		writeError(w, http.StatusBadGateway, "matcher unavailable")
		return
	}
	writeJSON(w, http.StatusOK, model.PresentMatch(*match))
}

func (s *server) handleScore(w http.ResponseWriter, r *http.Request) {
	var in salesapi.LeadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pred, err := s.api.PredictScore(r.Context(), in)
	if err != nil {
		zap.L().Error("predict score", zap.Error(err))
		writeError(w, http.StatusBadGateway, "scoring model unavailable")
		return
	}
	writeJSON(w, http.StatusOK, pred)
}
