package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server runs the debug router on its own listener.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

func NewServer(addr string, cfg RouterConfig) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: cfg.Log,
	}
}

// Start listens in the background. Listener errors other than a clean
// shutdown are logged.
func (s *Server) Start() {
	go func() {
		s.log.Info("除錯伺服器啟動", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("除錯伺服器錯誤", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
