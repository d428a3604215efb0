// Package server exposes the aggregation HTTP API: profile grid, profile
// extras, hashtag explorer, the media byte proxy, and operational
// endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"instaview/pkg/config"
	"instaview/pkg/instagram"
	"instaview/pkg/logger"
	"instaview/pkg/ratelimit"
	"instaview/pkg/session"
)

// Upstream is the slice of the Instagram client the handlers drive. Each
// request gets its own Upstream; only the session manager's state is
// shared between requests.
type Upstream interface {
	session.Client

	FetchProfile(username string) (*instagram.Profile, error)
	Posts(profile *instagram.Profile) *instagram.PostIterator
	ResolveHashtag(tag string) (*instagram.Hashtag, error)
	HashtagPosts(tag string) *instagram.PostIterator
	Stories(userID string) ([]instagram.StoryItem, error)
	Highlights(userID string) ([]instagram.HighlightItem, error)
}

// SessionMode selects how an endpoint acquires its session.
type SessionMode int

const (
	// ModeAnonymousPreferred works without a session but still uses a
	// persisted privileged one when present.
	ModeAnonymousPreferred SessionMode = iota
	// ModePrivilegedRequired needs a logged-in bot session.
	ModePrivilegedRequired
)

// Server wires the aggregation handlers together.
type Server struct {
	cfg         *config.Config
	logger      logger.Logger
	sessions    *session.Manager
	newUpstream func() Upstream
	proxyClient *http.Client
}

// New creates a Server. The upstream rate limiter is shared by all
// request-scoped clients.
func New(cfg *config.Config, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}

	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	newUpstream := func() Upstream {
		return instagram.NewClient(cfg.Instagram.RequestTimeout, cfg.Instagram.UserAgent, limiter, log)
	}

	return &Server{
		cfg:         cfg,
		logger:      log,
		sessions:    session.NewManager(cfg.Instagram.BotUsername, cfg.Instagram.BotPassword, cfg.SessionFile(), log),
		newUpstream: newUpstream,
		proxyClient: &http.Client{Timeout: cfg.Instagram.ProxyTimeout},
	}
}

// acquire hands out a request-scoped upstream client bound to the shared
// session per the endpoint's mode.
func (s *Server) acquire(mode SessionMode) (Upstream, *session.Session) {
	client := s.newUpstream()
	sess := s.sessions.Ensure(client, mode == ModePrivilegedRequired)
	return client, sess
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.handleHealth)
	router.Get("/proxy", s.handleProxy)
	router.Get("/debug/session", s.handleDebugSession)

	router.Route("/api", func(r chi.Router) {
		r.Get("/scrape", s.handleScrape)
		r.Get("/profile_extras", s.handleProfileExtras)
		r.Get("/hashtag", s.handleHashtag)
	})

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("server listening", map[string]interface{}{
			"addr": s.cfg.Server.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per completed request.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoWithFields("request completed", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start),
				"request_id": chimiddleware.GetReqID(r.Context()),
			})
		})
	}
}
