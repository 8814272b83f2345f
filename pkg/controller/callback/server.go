package callback

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/utils/async"
	"github.com/hrops-lab/schedctl/pkg/utils/logging"
	"github.com/hrops-lab/schedctl/pkg/utils/safe"
)

// Provider identifies which OAuth flow a redirect belongs to
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderLinkedIn Provider = "linkedin"
)

// Result is one captured redirect. Code is empty when the provider reported
// an error instead of issuing a code.
type Result struct {
	Provider Provider
	Code     string
	State    string
	Err      string
}

// Server is a short-lived localhost listener that captures OAuth redirects.
// Each redirect is pushed onto Results; the waiting flow consumes exactly one
// pair per authorization, and repeats are absorbed downstream.
type Server struct {
	addr    string
	router  *chi.Mux
	srv     *http.Server
	ln      net.Listener
	results chan Result
}

type Option func(*Server)

// WithResultBuffer sets the capacity of the Results channel
func WithResultBuffer(n int) Option {
	return func(s *Server) {
		s.results = make(chan Result, n)
	}
}

// New creates a listener bound to addr, e.g. "127.0.0.1:8765". An addr with
// port 0 picks a free port; URL reports the bound address after Start.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		results: make(chan Result, 4),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/oauth/google/callback", s.capture(ProviderGoogle))
	r.Get("/oauth/linkedin/callback", s.capture(ProviderLinkedIn))
	s.router = r

	return s
}

// Start binds the listener and serves in the background until Shutdown
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return goerr.Wrap(err, "failed to bind callback listener", goerr.V("addr", s.addr))
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return goerr.Wrap(err, "callback listener stopped")
		}
		return nil
	})

	logging.From(ctx).Debug("callback listener started", "addr", ln.Addr().String())
	return nil
}

// URL returns the base URL of the bound listener
func (s *Server) URL() string {
	return "http://" + s.ln.Addr().String()
}

// Results delivers captured redirects in arrival order
func (s *Server) Results() <-chan Result {
	return s.results
}

// Shutdown stops the listener gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return goerr.Wrap(err, "failed to shut down callback listener")
	}
	return nil
}

func (s *Server) capture(provider Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		result := Result{
			Provider: provider,
			Code:     q.Get("code"),
			State:    q.Get("state"),
			Err:      q.Get("error"),
		}
		if result.Code == "" && result.Err == "" {
			result.Err = "missing authorization code"
		}

		select {
		case s.results <- result:
		default:
			// A flood of repeated redirects must not block the handler
			logging.From(r.Context()).Warn("dropping redirect, result buffer full",
				"provider", provider)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if result.Err != "" {
			w.WriteHeader(http.StatusBadRequest)
			safe.Write(r.Context(), w, []byte("<html><body><p>Authorization failed. You can close this window and retry from the console.</p></body></html>"))
			return
		}
		safe.Write(r.Context(), w, []byte("<html><body><p>Authorization received. You can close this window and return to the console.</p></body></html>"))
	}
}
