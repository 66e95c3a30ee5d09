package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/beautyboost/beautyboost/internal/app/ledger"
	"github.com/beautyboost/beautyboost/internal/domain"
)

// ─── Profile & Points ───────────────────────────────────────────────────────

// GET /api/profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.ledger.GetProfile(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "profile not initialized")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PATCH /api/profile
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var u domain.ProfileUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	p, err := s.ledger.UpdateProfile(r.Context(), accountFrom(r.Context()).ID, u)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "profile not initialized")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /api/points
func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.Summary(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /api/points/history
func (s *Server) handlePointsHistory(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.TransactionHistory(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

// GET /api/services/history?limit=N
func (s *Server) handleServiceHistory(w http.ResponseWriter, r *http.Request) {
	limit := ledger.RecentServiceLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_input", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries, err := s.ledger.ServiceHistory(r.Context(), accountFrom(r.Context()).ID, limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"services": entries,
		"count":    len(entries),
	})
}

// ─── Catalog ────────────────────────────────────────────────────────────────

// GET /api/catalog/services
func (s *Server) handleCatalogServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"services": s.catalog.Services()})
}

// GET /api/catalog/rewards
func (s *Server) handleCatalogRewards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rewards": s.catalog.Rewards()})
}

// ─── Bookings ───────────────────────────────────────────────────────────────

type bookingRequest struct {
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// GET /api/bookings
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.ledger.ListBookings(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// POST /api/bookings
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	svc, err := s.catalog.LookupService(req.ServiceID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	b, err := s.ledger.CreateBooking(r.Context(), accountFrom(r.Context()).ID, svc.BookingInput(req.Date, req.Time))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// POST /api/bookings/{id}/complete
func (s *Server) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.CompleteBooking(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// POST /api/bookings/{id}/cancel
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.CancelBooking(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ─── Rewards ────────────────────────────────────────────────────────────────

// POST /api/rewards/{id}/redeem
func (s *Server) handleRedeemReward(w http.ResponseWriter, r *http.Request) {
	rw, err := s.catalog.LookupReward(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	rec, err := s.ledger.RedeemReward(r.Context(), accountFrom(r.Context()).ID, rw.ID, rw.Name, rw.Points)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GET /api/rewards/redeemed
func (s *Server) handleListRedeemed(w http.ResponseWriter, r *http.Request) {
	rewards, err := s.ledger.ListRedeemedRewards(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rewards": rewards,
		"count":   len(rewards),
	})
}

// POST /api/rewards/redeemed/{id}/use
func (s *Server) handleUseReward(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.UseReward(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
