// Package api provides the HTTP server for the loyalty core.
// It is a thin JSON adapter over the account directory and the ledger;
// bearer tokens carry the caller's account id.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beautyboost/beautyboost/internal/app/accounts"
	"github.com/beautyboost/beautyboost/internal/app/ledger"
	"github.com/beautyboost/beautyboost/internal/domain"
	"github.com/beautyboost/beautyboost/internal/infra/catalog"
	"github.com/beautyboost/beautyboost/internal/infra/observability"
	"github.com/beautyboost/beautyboost/internal/security"
)

// Server is the BeautyBoost HTTP API server.
type Server struct {
	dir            *accounts.Directory
	ledger         *ledger.Service
	catalog        *catalog.Catalog
	tokens         *security.Tokens
	metricsEnabled bool
	corsOrigin     string
	log            *slog.Logger
}

// NewServer creates a new API server.
func NewServer(dir *accounts.Directory, led *ledger.Service, cat *catalog.Catalog, tokens *security.Tokens) *Server {
	return &Server{
		dir:        dir,
		ledger:     led,
		catalog:    cat,
		tokens:     tokens,
		corsOrigin: "*",
		log:        slog.Default().With("component", "api"),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCORSOrigin sets Access-Control-Allow-Origin. Empty disables CORS headers.
func (s *Server) SetCORSOrigin(origin string) { s.corsOrigin = origin }

// SetLogger replaces the request/error logger.
func (s *Server) SetLogger(l *slog.Logger) { s.log = l.With("component", "api") }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)
	r.Use(s.metricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/catalog/services", s.handleCatalogServices)
		r.Get("/catalog/rewards", s.handleCatalogRewards)

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Get("/profile", s.handleGetProfile)
			r.Patch("/profile", s.handleUpdateProfile)

			r.Get("/points", s.handlePoints)
			r.Get("/points/history", s.handlePointsHistory)
			r.Get("/services/history", s.handleServiceHistory)

			r.Get("/bookings", s.handleListBookings)
			r.Post("/bookings", s.handleCreateBooking)
			r.Post("/bookings/{id}/complete", s.handleCompleteBooking)
			r.Post("/bookings/{id}/cancel", s.handleCancelBooking)

			r.Post("/rewards/{id}/redeem", s.handleRedeemReward)
			r.Get("/rewards/redeemed", s.handleListRedeemed)
			r.Post("/rewards/redeemed/{id}/use", s.handleUseReward)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/bookings", s.handleAdminBookings)
				r.Get("/summary", s.handleAdminSummary)
				r.Get("/customers", s.handleAdminCustomers)
			})
		})
	})

	return r
}

// ─── Responses ──────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    typ,
		},
	})
}

// errorStatus maps domain errors to HTTP status and error type.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "insufficient_balance"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeDomainError writes err with its mapped status. Internal errors are
// logged and their message is not exposed.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, typ := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		msg = "internal error"
	}
	writeError(w, status, typ, msg)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// ─── Middleware ─────────────────────────────────────────────────────────────

// corsMiddleware adds CORS headers for browser front ends.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request count and latency by route pattern.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := ""
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.ObserveRequest(r.Method, route, status, time.Since(start))
	})
}
