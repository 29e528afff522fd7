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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yourusername/exam-api/internal/config"
	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler"
	"github.com/yourusername/exam-api/internal/integration/directory"
	"github.com/yourusername/exam-api/internal/middleware"
	pgRepo "github.com/yourusername/exam-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/exam-api/internal/repository/redis"
	"github.com/yourusername/exam-api/internal/service"
	"github.com/yourusername/exam-api/internal/service/exammanager"
	"github.com/yourusername/exam-api/pkg/auth"
	"github.com/yourusername/exam-api/pkg/database"
)

// handlers - набор обработчиков для маршрутизатора
type handlers struct {
	questions   *handler.QuestionHandler
	exams       *handler.ExamHandler
	assignments *handler.AssignmentHandler
	attempts    *handler.AttemptHandler
	health      *handler.HealthHandler
}

func main() {
	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Предупреждение: не удалось прочитать .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	release := os.Getenv("GIN_MODE") == "release"

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), release)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.MigrateDB(db, migrationsDir); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	sqlDB, err := database.GetSQLDB(db)
	if err != nil {
		log.Printf("Failed to get sql.DB: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Репозитории
	topicRepo := pgRepo.NewTopicRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	examRepo := pgRepo.NewExamRepo(db)
	assignmentRepo := pgRepo.NewAssignmentRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Внешний справочник сотрудников
	directoryClient := directory.NewClient(
		cfg.Directory.BaseURL,
		cfg.Directory.DirectoryTimeout(),
		cacheRepo,
		cfg.Directory.CacheTTL(),
	)

	// Сервисы
	shuffler := exammanager.NewSecureShuffler()
	deliveryService := service.NewDeliveryService(examRepo, questionRepo, cacheRepo, shuffler, cfg.Exam.DeliveryCacheTTL())
	questionService := service.NewQuestionService(topicRepo, questionRepo, deliveryService)
	examService := service.NewExamService(examRepo, topicRepo, questionRepo, assignmentRepo, deliveryService, shuffler)
	assignmentService := service.NewAssignmentService(examRepo, assignmentRepo, attemptRepo, directoryClient, deliveryService, cfg.Exam.DefaultMaxAttempts)
	submissionService := service.NewSubmissionService(examRepo, questionRepo, assignmentRepo, attemptRepo)

	jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret)
	if err != nil {
		log.Printf("Failed to initialize JWT service: %v", err)
		os.Exit(1)
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	router := setupRouter(cfg, authMiddleware, rateLimiter, handlers{
		questions:   handler.NewQuestionHandler(questionService),
		exams:       handler.NewExamHandler(examService),
		assignments: handler.NewAssignmentHandler(assignmentService),
		attempts:    handler.NewAttemptHandler(submissionService, assignmentService),
		health:      handler.NewHealthHandler(sqlDB),
	})

	// HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server exited properly")
}

// setupRouter регистрирует маршруты /api/v1
func setupRouter(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h handlers) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", h.health.Health)

	examLimit := rateLimiter.Limit(middleware.SubmitRateLimitConfig(cfg.RateLimit.SubmitMaxRequests, cfg.RateLimit.SubmitWindow()))
	adminOnly := authMiddleware.RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin)
	employeeOnly := authMiddleware.RequireRole(entity.RoleEmployee)

	api := router.Group("/api/v1")
	api.Use(authMiddleware.RequireAuth())
	{
		// Банк вопросов
		admin := api.Group("")
		admin.Use(adminOnly)
		{
			admin.GET("/topics", h.questions.ListTopics)
			admin.POST("/topics", h.questions.CreateTopic)

			admin.GET("/questions", h.questions.ListQuestions)
			admin.POST("/questions", h.questions.CreateQuestion)
			questionWithID := admin.Group("/questions/:id")
			questionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				questionWithID.GET("", h.questions.GetQuestion)
				questionWithID.PUT("", h.questions.UpdateQuestion)
				questionWithID.DELETE("", h.questions.DeleteQuestion)
			}

			// Экзамены
			admin.GET("/exams", h.exams.ListExams)
			admin.POST("/exams", h.exams.ComposeExam)
			examWithID := admin.Group("/exams/:id")
			examWithID.Use(middleware.ExtractUintParam("id", "examID"))
			{
				examWithID.GET("", h.exams.GetExam)
				examWithID.PUT("", h.exams.UpdateExam)
				examWithID.DELETE("", h.exams.DeleteExam)
				examWithID.GET("/questions", h.exams.PreviewQuestions)
				examWithID.GET("/assignments", h.assignments.ListExamAssignments)
				examWithID.GET("/attempts/export", h.attempts.ExportExamAttempts)
			}

			admin.POST("/assignments", h.assignments.AssignExam)
			admin.POST("/assignments/:id/revoke", middleware.ExtractUintParam("id", "assignmentID"), h.assignments.RevokeAssignment)
		}

		// Маршруты сотрудника
		employee := api.Group("")
		employee.Use(employeeOnly)
		{
			employee.GET("/assignments/my", h.assignments.ListMyAssignments)
			assignmentWithID := employee.Group("/assignments/:id")
			assignmentWithID.Use(middleware.ExtractUintParam("id", "assignmentID"))
			{
				assignmentWithID.POST("/start", examLimit, h.assignments.StartAssignment)
				assignmentWithID.GET("/attempts", h.assignments.ListAttempts)
			}
			employee.POST("/attempts", examLimit, h.attempts.SubmitAttempt)
		}
	}

	return router
}
