package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	auditpg "obrasoft/ms_gestion_core/internal/adapters/audit/postgres"
	clientpg "obrasoft/ms_gestion_core/internal/adapters/client/postgres"
	companypg "obrasoft/ms_gestion_core/internal/adapters/company/postgres"
	costcenterpg "obrasoft/ms_gestion_core/internal/adapters/costcenter/postgres"
	dashboardpg "obrasoft/ms_gestion_core/internal/adapters/dashboard/postgres"
	documentpg "obrasoft/ms_gestion_core/internal/adapters/document/postgres"
	adminhttp "obrasoft/ms_gestion_core/internal/adapters/http/admin"
	clienthttp "obrasoft/ms_gestion_core/internal/adapters/http/client"
	companyhttp "obrasoft/ms_gestion_core/internal/adapters/http/company"
	costcenterhttp "obrasoft/ms_gestion_core/internal/adapters/http/costcenter"
	dashboardhttp "obrasoft/ms_gestion_core/internal/adapters/http/dashboard"
	documenthttp "obrasoft/ms_gestion_core/internal/adapters/http/document"
	healthhttp "obrasoft/ms_gestion_core/internal/adapters/http/health"
	inventoryhttp "obrasoft/ms_gestion_core/internal/adapters/http/inventory"
	invoicehttp "obrasoft/ms_gestion_core/internal/adapters/http/invoice"
	projecthttp "obrasoft/ms_gestion_core/internal/adapters/http/project"
	purchasehttp "obrasoft/ms_gestion_core/internal/adapters/http/purchase"
	workforcehttp "obrasoft/ms_gestion_core/internal/adapters/http/workforce"
	inventorypg "obrasoft/ms_gestion_core/internal/adapters/inventory/postgres"
	invoicepg "obrasoft/ms_gestion_core/internal/adapters/invoice/postgres"
	projectpg "obrasoft/ms_gestion_core/internal/adapters/project/postgres"
	purchasepg "obrasoft/ms_gestion_core/internal/adapters/purchase/postgres"
	"obrasoft/ms_gestion_core/internal/adapters/storage/drive"
	workforcepg "obrasoft/ms_gestion_core/internal/adapters/workforce/postgres"
	appclient "obrasoft/ms_gestion_core/internal/application/client"
	appcompany "obrasoft/ms_gestion_core/internal/application/company"
	appcostcenter "obrasoft/ms_gestion_core/internal/application/costcenter"
	appdashboard "obrasoft/ms_gestion_core/internal/application/dashboard"
	appdocument "obrasoft/ms_gestion_core/internal/application/document"
	apphealth "obrasoft/ms_gestion_core/internal/application/health"
	appinventory "obrasoft/ms_gestion_core/internal/application/inventory"
	appinvoice "obrasoft/ms_gestion_core/internal/application/invoice"
	appproject "obrasoft/ms_gestion_core/internal/application/project"
	apppurchase "obrasoft/ms_gestion_core/internal/application/purchase"
	appworkforce "obrasoft/ms_gestion_core/internal/application/workforce"
	"obrasoft/ms_gestion_core/internal/infrastructure/backup"
	"obrasoft/ms_gestion_core/internal/infrastructure/config"
	"obrasoft/ms_gestion_core/internal/infrastructure/database"
	"obrasoft/ms_gestion_core/internal/infrastructure/http/server"
	"obrasoft/ms_gestion_core/internal/infrastructure/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gestion",
		Short:        "Construction management core service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "backup",
		Short: "Dump the database with pg_dump and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd.Context())
		},
	})

	return root
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info("Database connection established", "database", cfg.Database.Database)

	if err := database.RunMigrations(ctx, pool, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	invoiceRepo := invoicepg.NewRepository(pool)
	clientRepo := clientpg.NewRepository(pool)
	projectRepo := projectpg.NewRepository(pool)
	costCenterRepo := costcenterpg.NewRepository(pool)
	workforceRepo := workforcepg.NewRepository(pool)
	inventoryRepo := inventorypg.NewRepository(pool)
	purchaseRepo := purchasepg.NewRepository(pool)
	documentRepo := documentpg.NewRepository(pool)
	companyRepo := companypg.NewRepository(pool)
	dashboardRepo := dashboardpg.NewRepository(pool)
	auditRepo := auditpg.NewRepository(pool)

	var uploader appdocument.Uploader
	if cfg.Storage.Enabled {
		driveClient, err := drive.NewClient(ctx, cfg.Storage.CredentialsFile, cfg.Storage.FolderID)
		if err != nil {
			return fmt.Errorf("init drive storage: %w", err)
		}
		uploadPool := appdocument.NewUploadWorkerPool(
			ctx,
			cfg.Storage.UploadWorkers,
			cfg.Storage.UploadQueueSize,
			cfg.Storage.UploadTimeout,
			documentRepo,
			driveClient,
			log,
		)
		uploadPool.Start()
		defer uploadPool.Stop()
		uploader = uploadPool
		log.Info("Drive upload pool started", "workers", cfg.Storage.UploadWorkers)
	} else {
		log.Info("Drive storage disabled, documents stay in PENDIENTE state")
	}

	healthService := apphealth.NewService(apphealth.Metadata{
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}, pool)

	backupRunner := backup.NewRunner(cfg.Database, cfg.Backup, log)

	handlers := server.Handlers{
		Health:     healthhttp.NewHandler(healthService),
		Invoice:    invoicehttp.NewHandler(appinvoice.NewService(invoiceRepo, auditRepo, log), log),
		Client:     clienthttp.NewHandler(appclient.NewService(clientRepo, log), log),
		Project:    projecthttp.NewHandler(appproject.NewService(projectRepo, log), log),
		CostCenter: costcenterhttp.NewHandler(appcostcenter.NewService(costCenterRepo, log), log),
		Workforce:  workforcehttp.NewHandler(appworkforce.NewService(workforceRepo, log), log),
		Inventory:  inventoryhttp.NewHandler(appinventory.NewService(inventoryRepo, log), log),
		Purchase:   purchasehttp.NewHandler(apppurchase.NewService(purchaseRepo, log), log),
		Document:   documenthttp.NewHandler(appdocument.NewService(documentRepo, uploader, log), log),
		Company:    companyhttp.NewHandler(appcompany.NewService(companyRepo, log), log),
		Dashboard:  dashboardhttp.NewHandler(appdashboard.NewService(dashboardRepo, log), log),
		Admin:      adminhttp.NewHandler(backupRunner, log),
	}

	srv, err := server.New(server.Options{
		Config:   cfg,
		Logger:   log,
		Handlers: handlers,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	return srv.Run(ctx)
}

func runMigrate(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Migrations applied")
	return nil
}

func runBackup(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, err := backup.NewRunner(cfg.Database, cfg.Backup, log).Run(ctx)
	if err != nil {
		return fmt.Errorf("run backup: %w", err)
	}
	log.Info("Backup written", "path", path)
	return nil
}

func poolConfig(cfg config.AppConfig) database.Config {
	return database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
}
