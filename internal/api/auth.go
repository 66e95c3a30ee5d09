package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/beautyboost/beautyboost/internal/domain"
)

type ctxKey int

const accountKey ctxKey = iota

// accountFrom returns the authenticated account stored by authMiddleware.
func accountFrom(ctx context.Context) domain.Account {
	a, _ := ctx.Value(accountKey).(domain.Account)
	return a
}

// authMiddleware resolves the bearer token to a directory account.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := s.tokens.Validate(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		// The directory is the source of truth for role; a deleted
		// account invalidates its tokens.
		account, err := s.dir.Get(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), accountKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ─── Auth Handlers ──────────────────────────────────────────────────────────

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Account   domain.Account `json:"account"`
}

// POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	account, err := s.dir.CreateAccount(r.Context(), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeToken(w, r, http.StatusCreated, account)
}

// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	account, err := s.dir.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password look the same to the caller.
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrInvalidCredentials
		}
		s.writeDomainError(w, r, err)
		return
	}
	s.writeToken(w, r, http.StatusOK, account)
}

// GET /api/auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, accountFrom(r.Context()).Public())
}

func (s *Server) writeToken(w http.ResponseWriter, r *http.Request, status int, account domain.Account) {
	token, exp, err := s.tokens.Issue(account)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, status, authResponse{Token: token, ExpiresAt: exp, Account: account.Public()})
}
