package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/cyberarian/rekama-sys/pkg/config"
	"github.com/cyberarian/rekama-sys/pkg/connector"
	"github.com/cyberarian/rekama-sys/pkg/governance"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/metrics"
)

// Server wires the governance components behind an HTTP router.
type Server struct {
	Router     *mux.Router
	API        *mux.Router
	Service    *governance.Service
	Connectors *connector.Engine
	Sessions   *identity.Sessions
	Tokens     *identity.TokenIssuer
	Metrics    *metrics.Metrics
	Config     *config.Config
	Logger     *slog.Logger
	srv        *http.Server
}

// Options holds the components a Server needs. Metrics and Config may be
// nil.
type Options struct {
	Service    *governance.Service
	Connectors *connector.Engine
	Sessions   *identity.Sessions
	Tokens     *identity.TokenIssuer
	Metrics    *metrics.Metrics
	Config     *config.Config
	Logger     *slog.Logger
	// AccessLog receives one combined-format line per request. Defaults to
	// os.Stdout.
	AccessLog io.Writer
}

func NewServer(opts Options, host string, port string) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AccessLog == nil {
		opts.AccessLog = os.Stdout
	}

	router := mux.NewRouter().UseEncodedPath()
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}

	srv := &http.Server{
		Handler:      handlers.LoggingHandler(opts.AccessLog, router),
		Addr:         net.JoinHostPort(host, port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:     router,
		API:        router.PathPrefix("/api").Subrouter(),
		Service:    opts.Service,
		Connectors: opts.Connectors,
		Sessions:   opts.Sessions,
		Tokens:     opts.Tokens,
		Metrics:    opts.Metrics,
		Config:     opts.Config,
		Logger:     opts.Logger,
		srv:        srv,
	}
}

// Handler returns the full handler chain, access log included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// ClientIP returns the caller's address. X-Forwarded-For is honoured only
// when the direct peer is a trusted proxy.
func (s *Server) ClientIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if s.Config != nil && s.Config.IsTrustedProxy(host) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip
			}
		}
	}
	return net.ParseIP(host)
}
