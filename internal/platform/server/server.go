package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/adapters/http/handler"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/user"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/platform/metrics"
)

const shutdownTimeout = 10 * time.Second

// Server は HTTP サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	httpServer *http.Server
}

// New は指定されたアドレスで待ち受ける HTTP サーバーを構築します。
// m が nil の場合、メトリクス関連のルートとミドルウェアは登録されません。
func New(listenAddr string, users user.UseCase, attendanceSvc attendance.UseCase, m *metrics.Metrics) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if m != nil {
		r.Use(m.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	userHandler := handler.NewUserHandler(users)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, m)

	r.Route("/api/v1", func(api chi.Router) {
		userHandler.Register(api)

		api.Group(func(identified chi.Router) {
			identified.Use(handler.Identity(users))
			attendanceHandler.Register(identified)
		})
	})

	return &Server{
		listenAddr: listenAddr,
		httpServer: &http.Server{
			Addr:              listenAddr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler はルーティング済みのハンドラを返します(テスト用)。
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run はサーバーを起動し、コンテキストがキャンセルされると Shutdown します。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve HTTP on %s: %w", s.listenAddr, err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
