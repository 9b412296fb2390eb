// Package server is the JSON backend the dashboard talks to: session login,
// complaint CRUD, the admin status toggle and a websocket change feed.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"complaint-desk/internal/store"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Config struct {
	Addr string
	// Secret signs session cookies. Required.
	Secret     string
	SessionTTL time.Duration
	// SecureCookie marks the session cookie Secure (set behind TLS).
	SecureCookie bool
}

type Server struct {
	cfg   Config
	store *store.Store
	log   *zap.Logger
	hub   *hub
	now   func() time.Time

	compress func(http.Handler) http.Handler
}

// Responses smaller than this are sent uncompressed.
const compressMinSize = 1024

func New(cfg Config, st *store.Store, log *zap.Logger) (*Server, error) {
	if st == nil {
		return nil, errors.New("server: nil store")
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("server: session secret is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	compress, err := httpcompression.DefaultAdapter(httpcompression.MinSize(compressMinSize))
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		log:      log,
		hub:      newHub(log),
		now:      time.Now,
		compress: compress,
	}, nil
}

// Handler returns the routed backend. Health and auth endpoints are public;
// everything else resolves the session first.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogging)

	r.Get("/health", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/signup", s.handleSignup)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		// The websocket upgrade needs the raw connection, so it stays outside
		// the compressed group.
		r.Get("/ws", s.hub.serveWS)

		r.Group(func(r chi.Router) {
			r.Use(s.compress)
			r.Get("/api/me", s.handleMe)
			r.Get("/api/complaints", s.handleListComplaints)
			r.Post("/submit_complaint_ajax", s.handleSubmitComplaint)
			r.Post("/update_complaint", s.handleUpdateComplaint)
			r.Post("/delete_complaint", s.handleDeleteComplaint)
			r.Post("/toggle_complaint_status", s.handleToggleStatus)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		switch {
		case status >= 500:
			s.log.Error("request", fields...)
		case status >= 400:
			s.log.Warn("request", fields...)
		default:
			s.log.Info("request", fields...)
		}
	})
}
