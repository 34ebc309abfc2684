package main

import (
	"context"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/portal/internal/app"
	"github.com/campushub/portal/internal/config"
	"github.com/campushub/portal/internal/repository"
	"github.com/campushub/portal/internal/server"
	"github.com/campushub/portal/internal/service"
	"github.com/campushub/portal/internal/summarizer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Sugar().Fatalw("Failed to create connection pool", "error", err)
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Sugar().Fatalw("Failed to create migrator", "error", err)
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Sugar().Fatalw("Failed to apply migrations", "error", err)
	}
	migrator.Close()

	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	slotRepo := repository.NewSlotRepository(pool)
	apptRepo := repository.NewAppointmentRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	bookRepo := repository.NewBookRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)

	var summarizerClient service.Summarizer
	if cfg.SummarizerURL != "" {
		summarizerClient = summarizer.NewClient(cfg.SummarizerURL)
	} else {
		logger.Warn("SUMMARIZER_URL not set, audit summarization is disabled")
	}

	auditService := service.NewAuditService(auditRepo, summarizerClient, logger)
	schedulingService := service.NewSchedulingService(slotRepo, apptRepo, userRepo, roleRepo, auditService, logger)
	userService := service.NewUserService(userRepo, auditService, logger)
	courseService := service.NewCourseService(courseRepo, auditService, logger)
	libraryService := service.NewLibraryService(bookRepo, auditService, logger)
	statsService := service.NewStatsService(userRepo, apptRepo, courseRepo, bookRepo)

	scheduler := app.NewScheduler(statsService, auditService, 0, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	var origins []string
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	}

	srv := server.New(
		userService,
		roleRepo,
		schedulingService,
		courseService,
		libraryService,
		auditService,
		statsService,
		origins,
		logger,
	)

	logger.Sugar().Infow("Starting campus portal",
		"environment", cfg.Environment,
		"addr", cfg.HTTPAddr)

	if err := srv.Run(cfg.HTTPAddr); err != nil {
		logger.Sugar().Fatalw("HTTP server failed", "error", err)
	}
}
