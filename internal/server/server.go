package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/notepad/internal/auth"
	"github.com/dukerupert/notepad/internal/database"
	"github.com/dukerupert/notepad/internal/handler"
	"github.com/dukerupert/notepad/internal/middleware"
	"github.com/dukerupert/notepad/internal/service"
	"github.com/dukerupert/notepad/internal/store"
)

type Server struct {
	db         *database.DB
	tokens     *auth.TokenIssuer
	authH      *handler.AuthHandler
	noteH      *handler.NoteHandler
	corsOrigin string
	logger     *slog.Logger
}

// Options carries the explicit dependencies the HTTP surface is built from.
type Options struct {
	Hasher     *auth.Hasher
	Tokens     *auth.TokenIssuer
	CORSOrigin string
}

func New(db *database.DB, opts Options, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	noteStore := store.NewNoteStore(db)

	authSvc := service.NewAuthService(userStore, opts.Hasher, opts.Tokens, logger.With("component", "auth_service"))
	noteSvc := service.NewNoteService(noteStore, logger.With("component", "note_service"))

	return &Server{
		db:         db,
		tokens:     opts.Tokens,
		authH:      handler.NewAuthHandler(authSvc, logger.With("component", "auth")),
		noteH:      handler.NewNoteHandler(noteSvc, logger.With("component", "note")),
		corsOrigin: opts.CORSOrigin,
		logger:     logger,
	}
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("POST /auth/signup", s.authH.Signup)
	outerMux.HandleFunc("POST /auth/login", s.authH.Login)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireBearer(s.tokens, s.logger.With("component", "auth_gate"))
	outerMux.Handle("/notes", authMiddleware(protectedMux))
	outerMux.Handle("/notes/", authMiddleware(protectedMux))

	var h http.Handler = outerMux
	h = middleware.CORS(s.corsOrigin)(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return h
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /notes", s.noteH.List)
	mux.HandleFunc("POST /notes", s.noteH.Create)
	mux.HandleFunc("PUT /notes/{id}", s.noteH.Update)
	mux.HandleFunc("DELETE /notes/{id}", s.noteH.Delete)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check ping", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
