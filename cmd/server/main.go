package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/codex-attendance-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/user"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/codex-attendance-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/platform/metrics"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	userRepo := postgres.NewUserRepository(dbPool)
	userSvc := user.NewService(userRepo, nil)

	attendanceRepo := postgres.NewAttendanceRepository(dbPool)
	attendanceSvc := attendance.NewService(attendanceRepo, nil, txManager)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	httpServer := server.New(cfg.Server.ListenAddr, userSvc, attendanceSvc, m)

	log.Printf("HTTP server listening on %s", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
