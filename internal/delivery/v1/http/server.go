package http

import (
	"context"
	"net"
	"net/http"

	"github.com/DRSN-tech/pos-register/internal/cfg"
)

const maxHeaderBytes = 64 << 10

// Server обслуживает HTTP-поверхность кассы.
type Server struct {
	httpServer *http.Server
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
		},
	}
}

// Addr возвращает адрес, на котором слушает сервер.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Stop дожидается завершения активных запросов, пока не истечет ctx.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
