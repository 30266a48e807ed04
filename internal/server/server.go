package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Local is a running callback server.
type Local struct {
	srv    *http.Server
	addr   string
	errs   chan error
	logger *log.Logger
}

// Start listens on addr and serves handler in the background.
func Start(addr string, handler http.Handler, logger *log.Logger) (*Local, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Local{
		srv:    &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		addr:   ln.Addr().String(),
		errs:   make(chan error, 1),
		logger: logger,
	}

	go func() {
		logger.Info("starting callback server", "addr", l.addr)
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.errs <- err
		}
	}()
	return l, nil
}

// Addr is the bound address, useful when started on port 0.
func (l *Local) Addr() string {
	return l.addr
}

// Errors reports a server failure after start.
func (l *Local) Errors() <-chan error {
	return l.errs
}

// Shutdown stops the server, waiting at most five seconds for open requests.
func (l *Local) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.srv.Shutdown(ctx); err != nil {
		l.logger.Warn("error shutting down server", "error", err)
	}
}

// RequestLogger logs each request at debug level. Query strings are left out since they may carry tokens.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("callback request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
		})
	}
}
