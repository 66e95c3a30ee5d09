package api

import "net/http"

// ─── Admin Handlers ─────────────────────────────────────────────────────────
// Role checks happen in the ledger; non-admins get 403.

// GET /api/admin/bookings
func (s *Server) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.ledger.ListAllBookings(r.Context(), accountFrom(r.Context()))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GET /api/admin/summary
func (s *Server) handleAdminSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.AdminSummary(r.Context(), accountFrom(r.Context()))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /api/admin/customers
func (s *Server) handleAdminCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.ledger.ListCustomers(r.Context(), accountFrom(r.Context()))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customers": customers,
		"count":     len(customers),
	})
}
