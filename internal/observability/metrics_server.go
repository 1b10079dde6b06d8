package observability

import (
	"context"
	"net"
	"net/http"
	"time"
)

// MetricsServer exposes the metrics registry over HTTP at /metrics.
type MetricsServer struct {
	srv      *http.Server
	listener net.Listener
	logger   Logger
}

// NewMetricsServer binds a listener on addr and prepares the metrics
// endpoint. The server does not accept requests until Start is called.
func NewMetricsServer(addr string, metrics *Metrics, logger Logger) (*MetricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
		listener: listener,
		logger:   logger,
	}, nil
}

// Start begins serving the metrics endpoint in the background.
func (s *MetricsServer) Start() {
	s.logger.Info("starting metrics server",
		String("address", s.Addr()),
	)

	go func() {
		if err := s.srv.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server error", Error(err))
		}
	}()
}

// Addr returns the bound listen address.
func (s *MetricsServer) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
