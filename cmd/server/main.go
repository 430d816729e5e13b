package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/peopleops/hris-core/internal/application/dispatcher"
	"github.com/peopleops/hris-core/internal/application/facade"
	"github.com/peopleops/hris-core/internal/application/service"
	"github.com/peopleops/hris-core/internal/config"
	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/domain/routing"
	"github.com/peopleops/hris-core/internal/domain/scope"
	"github.com/peopleops/hris-core/internal/export"
	"github.com/peopleops/hris-core/internal/infrastructure/persistence/repository"
	"github.com/peopleops/hris-core/internal/infrastructure/persistence/sqlite"
	httpadapter "github.com/peopleops/hris-core/internal/interfaces/http"
	"github.com/peopleops/hris-core/internal/notification"
	"github.com/peopleops/hris-core/pkg/database"
	"github.com/peopleops/hris-core/pkg/utils"
)

func main() {
	// Local overrides live in .env; absence is fine.
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting HRIS case routing service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	sugar := &sugaredLogger{logger.Sugar()}

	// Permission table is validated once at startup; a malformed grant is a
	// deploy-time failure, never a runtime surprise.
	table := authz.DefaultTable()
	if err := table.Validate(); err != nil {
		logger.Fatal("Invalid permission table", zap.Error(err))
	}
	gate := authz.NewGate(table, authz.GateConfig{
		Enabled:        cfg.RBAC.Enabled,
		SuperAdminRole: directory.Role(cfg.RBAC.SuperAdminRole),
	})

	resolver := scope.NewResolver(scope.Config{
		CrossFunctionalDepartments: cfg.Directory.CrossFunctionalDepartments,
	})

	registry := facade.DefaultRegistry()

	// Repositories and the transaction manager
	caseRepo := repository.NewCaseRepository(db, logger)
	directoryRepo := repository.NewDirectoryRepository(db, logger)
	outboxRepo := repository.NewOutboxRepository(db, logger)
	txManager := sqlite.NewDB(db, logger)

	dirService := service.NewDirectoryService(directoryRepo, sugar,
		service.WithSnapshotTTL(cfg.Directory.RefreshInterval))

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(sugar))
	defer disp.Close()

	sink := notification.NewOutboxSink(outboxRepo, sugar)
	notification.RegisterHandlers(disp, sink, sugar)

	engine := routing.NewEngine()

	caseService := service.NewCaseService(
		caseRepo,
		dirService,
		gate,
		resolver,
		registry,
		engine,
		disp,
		txManager,
		sugar,
		service.WithCancelPendingOnDecline(cfg.Routing.CancelPendingOnDecline),
	)

	exporter := export.NewRegisterExporter()

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, caseService, dirService, exporter, sugar)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// sugaredLogger adapts zap's sugared logger to the minimal logging
// interfaces the application packages declare.
type sugaredLogger struct {
	s *zap.SugaredLogger
}

func (l *sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
