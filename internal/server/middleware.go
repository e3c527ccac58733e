package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"devbot/internal/auth"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// withRequestID echoes a caller supplied X-Request-ID or mints one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(contextWithRequestID(r.Context(), id)))
	})
}

// withAuth guards /v1 with a bearer token when a hash is configured.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tokenHash == "" || !strings.HasPrefix(r.URL.Path, "/v1/") {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(errors.New("missing bearer token")))
			return
		}
		if !auth.VerifyToken(s.tokenHash, token) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(errors.New("invalid bearer token")))
			return
		}
		next.ServeHTTP(w, r)
	})
}
