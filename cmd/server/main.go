package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"event-ticketing/config"
	"event-ticketing/internal/cache"
	"event-ticketing/internal/database"
	"event-ticketing/internal/handler"
	"event-ticketing/internal/monitoring"
	"event-ticketing/internal/queue"
	"event-ticketing/internal/repository"
	"event-ticketing/internal/service"
	"event-ticketing/internal/worker"
	"event-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// repositories
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	// cache + queue
	avCache := cache.NewRedisAvailabilityCache(rdb)
	bookingMQ, err := queue.NewRedisStreamBookingQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize booking queue: %v", err)
	}

	// services
	admissionSvc := service.NewAdmissionService(eventRepo, bookingRepo)
	ticketSvc := service.NewTicketService(ticketRepo, bookingRepo, eventRepo, userRepo)
	userSvc := service.NewUserService(userRepo)
	eventSvc := service.NewEventService(eventRepo, bookingRepo, avCache)
	bookingSvc := service.NewBookingService(userRepo, eventRepo, bookingRepo, ticketRepo,
		admissionSvc, ticketSvc, bookingMQ, avCache)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	availabilityWorker := worker.NewAvailabilityWorker(bookingMQ, eventSvc)
	go func() {
		if err := availabilityWorker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithComponent("main").Error("availability worker exited", zap.Error(err))
		}
	}()

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	monitoring.RegisterRoutes(router)

	handler.NewUserHandler(userSvc).RegisterRoutes(router)
	handler.NewEventHandler(eventSvc).RegisterRoutes(router)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(router)
	handler.NewTicketHandler(ticketSvc).RegisterRoutes(router)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
