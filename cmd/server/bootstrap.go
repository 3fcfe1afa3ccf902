package main

import (
	"github.com/sydo/sydo-reviews/internal/config"
	"github.com/sydo/sydo-reviews/internal/handlers"
	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/internal/utils"
	"github.com/sydo/sydo-reviews/pkg/logger"
)

// appServices holds the initialized services and handlers shared across routes.
type appServices struct {
	storage         *services.StorageService
	reminderService *services.ReminderService
	taskQueue       services.TaskQueue
	worker          *services.Worker
	authHandler     *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, storage,
// queue, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Blob storage for PDF grains and feedback screenshots
	storage, err := services.NewStorageService(&cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Task queue for reminders (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	reminderService := services.NewReminderService(models.GetDB(), taskQueue)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(reminderService.DeliverReminder)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(reminderService.DeliverReminder)
			worker.Start()
		}
	}

	// Start the due-reminder sweep
	services.StartReminderScheduler(reminderService)

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warnf("Failed to create admin user: %v", err)
	}

	return &appServices{
		storage:         storage,
		reminderService: reminderService,
		taskQueue:       taskQueue,
		worker:          worker,
		authHandler:     authHandler,
	}
}

// shutdown stops schedulers and drains the queue.
func shutdown(svc *appServices) {
	services.StopReminderScheduler()
	services.StopLogCleanupScheduler()
	if svc.worker != nil {
		svc.worker.Stop()
	}
	if svc.taskQueue != nil {
		svc.taskQueue.Close()
	}
}
