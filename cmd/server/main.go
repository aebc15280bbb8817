package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"topup-orders-service/internal/cache"
	"topup-orders-service/internal/config"
	"topup-orders-service/internal/controller"
	"topup-orders-service/internal/dto"
	"topup-orders-service/internal/middleware"
	"topup-orders-service/internal/rabbit"
	"topup-orders-service/internal/repository"
	"topup-orders-service/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	_ = godotenv.Load()
	cfg := config.Load()
	dto.RegisterValidations()

	// MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	db := client.Database(cfg.MongoDBName)

	// Redis (badge count cache)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
	if err := rdb.Ping(ctx).Err(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// RabbitMQ
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open rabbitmq channel")
	}

	publisher, err := rabbit.NewNotificationPublisher(ch, cfg.PublishRetry)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to declare notification exchange")
	}

	// Repositories and services
	orderRepo := repository.NewMongoOrderRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	notifRepo := repository.NewMongoNotificationRepository(db)
	unreadCache := cache.NewUnreadCache(rdb, 15*time.Second)

	notifService := service.NewNotificationService(notifRepo, unreadCache, publisher)
	orderService := service.NewOrderService(orderRepo, productRepo, notifService)
	authService := service.NewAuthService(cfg.AuthURL)

	// Handlers
	orderCtl := controller.NewOrderController(orderService)
	notifCtl := controller.NewNotificationController(notifService)

	// Router
	r := gin.Default()

	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.POST("/orders", orderCtl.CreateOrder)
	auth.GET("/orders/mine", orderCtl.GetMyOrders)
	auth.GET("/orders/:orderId", orderCtl.GetOrder)
	auth.POST("/orders/:orderId/payment-proof", orderCtl.UploadPaymentProof)
	auth.PUT("/orders/:orderId/cancel", orderCtl.CancelOrder)

	auth.GET("/notifications", notifCtl.List)
	auth.GET("/notifications/unread-count", notifCtl.UnreadCount)
	auth.PUT("/notifications/read-all", notifCtl.MarkAllRead)
	auth.PUT("/notifications/:id/read", notifCtl.MarkRead)
	auth.DELETE("/notifications", notifCtl.ClearAll)
	auth.DELETE("/notifications/:id", notifCtl.Delete)

	admin := auth.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders", orderCtl.GetAllOrders)
	admin.POST("/orders/:orderId/verify", orderCtl.VerifyOrder)
	admin.PUT("/orders/:orderId/status", orderCtl.UpdateStatus)
	admin.PUT("/orders/:orderId/delivery", orderCtl.UpdateDelivery)
	admin.POST("/notifications/broadcast", notifCtl.Broadcast)

	// Checkout events from the storefront
	consumer := rabbit.NewPlaceOrderConsumer(orderService)
	if err := rabbit.SetupConsumer(ctx, ch, consumer); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to set up checkout consumer")
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Logger.Info().Str("port", cfg.Port).Msg("topup orders service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to shut down server")
		}
		if err := ch.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close rabbitmq channel")
		}
		if err := conn.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close rabbitmq connection")
		}
		if err := rdb.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close redis client")
		}
		return client.Disconnect(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("service exited with error")
	}
}
