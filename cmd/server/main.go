package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"minami/training-system/internal/api"
	"minami/training-system/internal/config"
	"minami/training-system/internal/repository/mongo"
	"minami/training-system/internal/service"
	"minami/training-system/internal/storage"
)

func main() {
	log.Println("Starting Training System Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("student_assignments"))
		mongo.EnsurePlanSectionIndexes(ctx, appDB.Collection("plan_sections"))
		mongo.EnsurePlanTopicIndexes(ctx, appDB.Collection("plan_topics"))
		mongo.EnsurePlanTodoIndexes(ctx, appDB.Collection("plan_todos"))
		mongo.EnsureTrainingPlanIndexes(ctx, appDB.Collection("student_training_plans"))
		mongo.EnsureTrainingTaskIndexes(ctx, appDB.Collection("student_training_tasks"))
		mongo.EnsureDailyReportIndexes(ctx, appDB.Collection("daily_reports"))
		mongo.EnsureQuestionIndexes(ctx, appDB.Collection("questions"))
		mongo.EnsureAttachmentIndexes(ctx, appDB.Collection("report_attachments"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	sectionRepo := mongo.NewMongoPlanSectionRepository(appDB)
	topicRepo := mongo.NewMongoPlanTopicRepository(appDB)
	todoRepo := mongo.NewMongoPlanTodoRepository(appDB)
	trainingPlanRepo := mongo.NewMongoTrainingPlanRepository(appDB)
	trainingTaskRepo := mongo.NewMongoTrainingTaskRepository(appDB)
	reportRepo := mongo.NewMongoDailyReportRepository(appDB)
	questionRepo := mongo.NewMongoQuestionRepository(appDB)
	attachmentRepo := mongo.NewMongoAttachmentRepository(appDB)
	txnManager := mongo.NewTransactionManager(dbClient)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	accessPolicy := service.NewAccessPolicy(assignmentRepo)
	authService := service.NewAuthService(userRepo, assignmentRepo, txnManager, cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanTemplateService(planRepo, sectionRepo, topicRepo, todoRepo, txnManager)
	trainingService := service.NewTrainingService(
		trainingPlanRepo, trainingTaskRepo, userRepo,
		planRepo, sectionRepo, topicRepo, todoRepo,
		reportRepo, questionRepo, assignmentRepo,
		accessPolicy, txnManager,
	)
	accountService := service.NewAccountService(userRepo, assignmentRepo, trainingPlanRepo, trainingTaskRepo, accessPolicy)
	reportService := service.NewReportService(reportRepo, attachmentRepo, userRepo, accessPolicy, fileStorage)
	questionService := service.NewQuestionService(questionRepo, userRepo, accessPolicy)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, userRepo,
		authService, planService, trainingService,
		accountService, reportService, questionService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
