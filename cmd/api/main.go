package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-go-api/internal/config"
	"github.com/noah-isme/lingua-go-api/internal/database"
	"github.com/noah-isme/lingua-go-api/internal/events"
	"github.com/noah-isme/lingua-go-api/internal/handler"
	"github.com/noah-isme/lingua-go-api/internal/middleware"
	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/internal/router"
	"github.com/noah-isme/lingua-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.ClassEnrollment{},
		&models.Test{},
		&models.Assignment{},
		&models.StudentAssignment{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	testRepo := repository.NewTestRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	studentAssignmentRepo := repository.NewStudentAssignmentRepository(db)

	factory := service.NewAssignmentFactory(assignmentRepo, studentAssignmentRepo, enrollmentRepo, cfg.DefaultDuePeriod, logger)
	fanout := service.NewFanoutService(db, factory, testRepo, assignmentRepo, studentAssignmentRepo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dispatcher events.Dispatcher
	if cfg.NATSURL != "" {
		conn, js, err := database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Close()

		natsDispatcher, err := events.NewNATSDispatcher(js, logger)
		if err != nil {
			log.Fatalf("failed to create nats dispatcher: %v", err)
		}
		dispatcher = natsDispatcher

		var guard *events.Deduper
		if cfg.RedisURL != "" {
			redisClient, err := database.ConnectRedis(cfg.RedisURL)
			if err != nil {
				log.Fatalf("failed to connect to redis: %v", err)
			}
			defer redisClient.Close()
			guard = events.NewDeduper(redisClient, "", cfg.EventClaimTTL)
		}

		consumer := events.NewConsumer(js, fanout, guard, logger)
		if err := consumer.Start(ctx); err != nil {
			log.Fatalf("failed to start fan-out consumer: %v", err)
		}
	} else {
		dispatcher = events.NewInlineDispatcher(fanout, logger)
	}

	classService := service.NewClassService(classRepo, enrollmentRepo, dispatcher, validate, logger)
	testService := service.NewTestService(testRepo, classRepo, dispatcher, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, studentAssignmentRepo, logger)

	classHandler := handler.NewClassHandler(classService, validate, logger)
	testHandler := handler.NewTestHandler(testService, validate, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ClassHandler:      classHandler,
		TestHandler:       testHandler,
		AssignmentHandler: assignmentHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app)
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
