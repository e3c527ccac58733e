package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Guild scoped reads.
	mux.HandleFunc("GET /v1/guilds/{guild}/tasks", s.handleListTasks)
	mux.HandleFunc("GET /v1/guilds/{guild}/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("GET /v1/guilds/{guild}/board", s.handleBoard)

	return s.withRequestID(s.withRequestLogging(s.withAuth(mux)))
}
