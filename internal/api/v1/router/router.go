package router

import (
	"context"
	"net/http"
	"strings"

	"pathshala/internal/api/v1/handler"
	"pathshala/internal/config"
	"pathshala/internal/middleware"
	"pathshala/internal/pgmq"
	"pathshala/internal/pubsub"
	"pathshala/internal/repository"
	"pathshala/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires the HTTP surface: DB pool, S3 client, Pub/Sub publisher, queue
// client, repositories, services and handlers.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initialized")

	// 1. Open DB connection pool
	dsn := cfg.DBConnectionString
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}
		dsn += separator + "sslmode=disable"
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal().Msgf("Failed to create connection pool: %v", err)
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Initialize S3 client
	s3Config, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	)
	if err != nil {
		logger.Fatal().Msgf("Failed to load S3 config: %v", err)
	}
	s3Client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3URL)
		o.UsePathStyle = true
	})

	// 3. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 4. Initialize Pub/Sub publisher and queue client
	publisher, err := pubsub.NewPublisher(ctx, cfg.GCPProjectID)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub publisher: %v", err)
		return nil, nil, err
	}
	pgmqClient := pgmq.New(pool)

	// 5. Initialize repositories & services & handlers
	courseRepo := repository.NewCourseRepo(pool)
	enrollmentRepo := repository.NewEnrollmentRepo(pool)
	studentRepo := repository.NewStudentRepo(pool)
	materialRepo := repository.NewMaterialRepo(pool)
	classRepo := repository.NewClassRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)
	notificationRepo := repository.NewNotificationRepo(pool)

	courseSvc := service.NewCourseService(courseRepo, materialRepo)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, studentRepo, pgmqClient, cfg.ApprovalQueueName, logger)
	accessSvc := service.NewAccessService(materialRepo, studentRepo, enrollmentRepo, courseRepo, s3Client, cfg.S3Bucket, logger)
	materialSvc := service.NewMaterialService(materialRepo, studentRepo, s3Client, cfg.S3Bucket, pgmqClient, cfg.ApprovalQueueName, logger)
	studentSvc := service.NewStudentService(studentRepo, enrollmentRepo, courseRepo, s3Client, cfg.S3Bucket, cfg.S3URL, logger)
	classSvc := service.NewClassService(classRepo, enrollmentRepo, courseRepo, logger)
	chatSvc := service.NewChatService(messageRepo, classRepo, enrollmentRepo, publisher, cfg.ChatTopic, logger)
	notificationSvc := service.NewNotificationService(notificationRepo)

	courseHandler := handler.NewCourseHandler(courseSvc, validate)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, validate)
	materialHandler := handler.NewMaterialHandler(materialSvc, accessSvc, validate)
	studentHandler := handler.NewStudentHandler(studentSvc, validate)
	chatHandler := handler.NewChatHandler(chatSvc, validate, logger)
	classHandler := handler.NewClassHandler(classSvc, chatHandler, validate)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, validate)

	// 6. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)
	isLocalDev := cfg.PubSubEmulatorHost != ""
	pubsubAuthMiddleware := middleware.PubSubAuthMiddleware(isLocalDev, cfg.ChatPushEndpointURL, cfg.PubSubPushServiceAccountEmail, logger)

	// 7. Create ServeMux router
	mux := http.NewServeMux()

	apiV1Mux := http.NewServeMux()
	courseHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	enrollmentHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	materialHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	studentHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	classHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	notificationHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	chatHandler.RegisterPushRoute(apiV1Mux, pubsubAuthMiddleware)

	// Mount the API v1 routes under /v1
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// 8. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), pool, nil
}

// removeDisableGzip is a workaround for S3 signature errors with some S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
