// Package app wires the database, cloud storage, sync coordinator and
// services into one application shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"budgettracker/internal/cloud"
	"budgettracker/internal/cloud/drive"
	"budgettracker/internal/config"
	"budgettracker/internal/coordinator"
	"budgettracker/internal/logger"
	"budgettracker/internal/services"
)

// App holds the services of a running application.
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Cloud       *cloud.Registry
	Coordinator *coordinator.Coordinator

	Users    services.UserServicer
	Periods  services.PeriodServicer
	Expenses services.ExpenseServicer
	Reports  services.ReportServicer
	Sync     services.SyncServicer
	Audit    services.AuditServicer

	log *zap.SugaredLogger
}

// OpenStore connects to the configured cloud provider. It returns nil when
// cloud sync is disabled.
func OpenStore(ctx context.Context, cfg *config.Config) (cloud.ObjectStore, error) {
	switch cfg.CloudProvider {
	case config.CloudProviderDrive:
		store, err := drive.New(ctx, drive.Config{
			CredentialsFile: cfg.GoogleCredentialsFile,
			ClientID:        cfg.GoogleClientID,
			ClientSecret:    cfg.GoogleClientSecret,
			RefreshToken:    cfg.GoogleRefreshToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Google Drive: %w", err)
		}
		return store, nil
	case config.CloudProviderMemory:
		return cloud.NewMemoryStore(), nil
	case config.CloudProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cloud provider %q", cfg.CloudProvider)
	}
}

// New builds the application over db. A nil store disables cloud sync.
func New(db *gorm.DB, cfg *config.Config, store cloud.ObjectStore) *App {
	log := logger.Named("app")

	var registry *cloud.Registry
	if store != nil {
		registry = cloud.NewRegistry(store, cloud.Options{
			FolderName:       cfg.CloudFolderName,
			FileName:         cfg.CloudFileName,
			BackupFolderName: cfg.CloudBackupFolderName,
		})
	}

	coord := coordinator.New(coordinator.Options{Debounce: cfg.SyncDebounce})
	audit := services.NewAuditService(db)
	syncService := services.NewSyncService(db, registry, coord, audit, services.SyncOptions{
		BackupKeep:   cfg.BackupKeepCount,
		BackupOnSync: cfg.BackupOnSync,
	})

	log.Infow("Application initialized",
		"cloud_provider", cfg.CloudProvider,
		"sync_debounce", cfg.SyncDebounce.String(),
		"backup_keep", cfg.BackupKeepCount,
	)

	return &App{
		Config:      cfg,
		DB:          db,
		Cloud:       registry,
		Coordinator: coord,
		Users:       services.NewUserService(db),
		Periods:     services.NewPeriodService(db, syncService),
		Expenses:    services.NewExpenseService(db, syncService),
		Reports:     services.NewReportService(db),
		Sync:        syncService,
		Audit:       audit,
		log:         log,
	}
}

// Close runs pending uploads and stops the coordinator.
func (a *App) Close(ctx context.Context) error {
	if err := a.Coordinator.Close(ctx); err != nil {
		a.log.Warnw("Pending uploads did not finish", "error", err)
		return err
	}
	return nil
}
