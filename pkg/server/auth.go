package server

import (
	"net/http"
	"strings"

	"github.com/relaygw/relay/pkg/authgate"
)

func bearerFrom(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return h
}

// requireAuth wraps next so it only runs for the admin bearer. Any other
// bearer the gate accepts (the shared token or a valid dynamic key, §4.10)
// is answered with 403 Forbidden.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, authgate.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := s.gate.Authenticate(bearerFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if authCtx.Lease != nil {
			defer authCtx.Lease.Release()
		}
		if !authCtx.IsAdmin() {
			writeError(w, &authgate.ForbiddenError{Reason: "admin bearer required for this endpoint"})
			return
		}
		next(w, r, authCtx)
	}
}

// requireAuthenticated wraps next so it runs for any bearer the gate
// accepts — admin, shared, or a valid dynamic key — without forcing admin.
// Handlers gated this way are responsible for scoping their own results to
// the caller's tokens when authCtx is not admin (§4.9 "Privacy": "non-admin
// callers see only records whose token_key matches one of their own
// tokens").
func (s *Server) requireAuthenticated(next func(http.ResponseWriter, *http.Request, authgate.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := s.gate.Authenticate(bearerFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if authCtx.Lease != nil {
			defer authCtx.Lease.Release()
		}
		next(w, r, authCtx)
	}
}

// requireAdminIfConfigured gates an endpoint by Auth.ShareAuthToken:
// /build-key and /config-version/get are admin-only only when that
// option is set.
func (s *Server) requireAdminIfConfigured(next func(http.ResponseWriter, *http.Request, authgate.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := s.gate.Authenticate(bearerFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if authCtx.Lease != nil {
			defer authCtx.Lease.Release()
		}
		if err := authgate.RequireAdmin(authCtx, s.cfg.Auth.ShareAuthToken); err != nil {
			writeError(w, err)
			return
		}
		next(w, r, authCtx)
	}
}
