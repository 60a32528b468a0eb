package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"peakform/fitness-server/internal/api"
	"peakform/fitness-server/internal/config"
	"peakform/fitness-server/internal/repository/mongo"
	"peakform/fitness-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.Info("Starting PeakForm program server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.Fatalf("FATAL: Could not load config: %v", err)
	}
	logrus.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logrus.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		logrus.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logrus.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logrus.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureTemplateIndexes(ctx, appDB)
		mongo.EnsureEnrollmentIndexes(ctx, appDB.Collection("enrollments"))
		mongo.EnsureWorkoutInstanceIndexes(ctx, appDB.Collection("workout_instances"))
		mongo.EnsureBlockInstanceIndexes(ctx, appDB.Collection("block_instances"))
		mongo.EnsureBlockItemInstanceIndexes(ctx, appDB.Collection("block_item_instances"))
		mongo.EnsureMovementIndexes(ctx, appDB.Collection("movements"))
		mongo.EnsureLibraryIndexes(ctx, appDB)
		logrus.Info("Index creation process completed.")
	}()

	// --- Initialize Repositories ---
	logrus.Info("Initializing repositories...")
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	enrollmentRepo := mongo.NewMongoEnrollmentRepository(dbClient, appDB)
	workoutInstanceRepo := mongo.NewMongoWorkoutInstanceRepository(appDB)
	blockInstanceRepo := mongo.NewMongoBlockInstanceRepository(appDB)
	blockItemInstanceRepo := mongo.NewMongoBlockItemInstanceRepository(appDB)
	movementRepo := mongo.NewMongoMovementRepository(appDB)
	libraryRepo := mongo.NewMongoMovementLibraryRepository(appDB)

	// --- Initialize Services ---
	logrus.Info("Initializing services...")
	assignmentService := service.NewAssignmentService(templateRepo, enrollmentRepo, movementRepo, service.AssignmentPolicy{
		MaxPastStartDays: cfg.Assignment.MaxPastStartDays,
		DefaultTimezone:  cfg.Assignment.DefaultTimezone,
	})
	programService := service.NewProgramService(enrollmentRepo, workoutInstanceRepo, blockInstanceRepo, blockItemInstanceRepo, templateRepo)
	lifecycleService := service.NewLifecycleService(workoutInstanceRepo, blockItemInstanceRepo)
	catalogService := service.NewCatalogService(libraryRepo, movementRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.New()
	router.Use(gin.Recovery())

	// --- Setup Routes ---
	logrus.Info("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, assignmentService, programService, lifecycleService, catalogService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logrus.Infof("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logrus.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exiting.")
}
