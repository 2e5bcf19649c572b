package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 5 * time.Second

// Server runs the gateway's HTTP listener.
//
// The handler is composed by the gateway (REST routes plus the WebSocket
// upgrade endpoints); Server only owns the listener lifecycle. It is
// designed for graceful shutdown via context cancellation.
type Server struct {
	addr       string
	handler    http.Handler
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new HTTP [Server] for addr (e.g. ":8080").
//
// The server is not started until [Server.Start] is called.
func New(addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger,
	}
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a
// 5-second timeout. Hijacked WebSocket connections are not drained here;
// the hub closes them.
//
// Returns an error if the server fails to bind to the configured address.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify address availability synchronously
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.addr, err)
	}

	s.httpServer = &http.Server{
		Handler: s.handler,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// which ends the hub's read pumps along with ordinary handlers.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.logger.Info("http server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the listen address the server was configured with.
func (s *Server) Addr() string {
	return s.addr
}
