package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/moneymitra/server/internal/agent/model"
	logx "github.com/moneymitra/server/pkg/logger"
)

// Config is read from HTTP_* and CORS_* variables.
type Config struct {
	Addr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"120s"`
	CORSOrigins  []string      `envconfig:"CORS_ORIGINS" default:"*"`
}

// ChatService runs conversation turns. graph.Runner implements it.
type ChatService interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.Reply, error)
	Reset(ctx context.Context, conversationID string) error
}

// ToolService lists and runs tools directly. *tools.Registry implements it.
type ToolService interface {
	Names() []string
	Info(name string) (*schema.ToolInfo, bool)
	Invoke(ctx context.Context, name, argsJSON string) (string, error)
}

// Server is the HTTP API in front of the assistant.
type Server struct {
	cfg        Config
	chat       ChatService
	tools      ToolService
	router     *mux.Router
	httpServer *http.Server
}

// NewServer wires the routes. chat may be nil, in which case /api/chat answers 503.
func NewServer(cfg Config, chat ChatService, tools ToolService) *Server {
	s := &Server{cfg: cfg, chat: chat, tools: tools}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	if len(s.cfg.CORSOrigins) > 0 {
		s.router.Use(s.corsMiddleware)
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/conversations/{id}", s.handleResetConversation).Methods(http.MethodDelete, http.MethodOptions)
	apiRouter.HandleFunc("/tools", s.handleListTools).Methods(http.MethodGet)
	apiRouter.HandleFunc("/tools/{name}", s.handleInvokeTool).Methods(http.MethodPost, http.MethodOptions)
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	logx.Info().Str("address", s.cfg.Addr).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	logx.Info().Msg("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		logx.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("HTTP request")
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logx.Error().
					Interface("error", rec).
					Str("path", r.URL.Path).
					Msg("Panic recovered")
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(s.cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(next)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
