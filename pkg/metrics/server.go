package metrics

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes a registry on /metrics over HTTP.
type Server struct {
	addr   string
	gather prometheus.Gatherer
	log    *zap.Logger

	lock       sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server for gatherer on addr. It does not listen until
// Start.
func NewServer(addr string, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{addr: addr, gather: gatherer, log: log}
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.httpServer != nil {
		return fmt.Errorf("metrics server already started")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	s.httpServer = &http.Server{Handler: mux}
	s.listener = ln

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("metrics server failed", zap.Error(err))
		}
	}(s.httpServer)
	s.log.Debug("metrics server started", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop closes the server. Stopping a server that is not running is a no-op.
func (s *Server) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Close()
	s.httpServer = nil
	s.listener = nil
	return err
}
