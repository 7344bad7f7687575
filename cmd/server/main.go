package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"unipool/internal/config"
	"unipool/internal/handlers"
	"unipool/internal/middleware"
	"unipool/internal/repositories/mongodb"
	"unipool/internal/services"
	"unipool/pkg/broker"
	"unipool/pkg/cache"
	"unipool/pkg/database"
	"unipool/pkg/logger"
	"unipool/pkg/maps"
	"unipool/pkg/websocket"
	"unipool/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
		Caller:     cfg.Log.Caller,
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:                cfg.Database.URI,
		Database:           cfg.Database.Database,
		MaxPoolSize:        cfg.Database.MaxPoolSize,
		MinPoolSize:        cfg.Database.MinPoolSize,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		SocketTimeout:      cfg.Database.SocketTimeout,
		TransactionTimeout: cfg.Database.TransactionTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.WithError(err).Warn("Failed to close MongoDB connection")
		}
	}()

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(db.Database, appLogger).Up(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	checks := map[string]handlers.Pinger{"mongodb": db}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			appLogger.WithError(err).Warn("Redis unavailable, continuing without cache and cross-instance fan-out")
			redisCache = nil
		} else {
			defer redisCache.Close()
			checks["redis"] = redisCache
		}
	}

	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)

	useRedisFanout := redisCache != nil && cfg.Realtime.HasDriver(config.NotifierDriverRedis)

	var publishers []services.Publisher
	if useRedisFanout {
		// Every instance, this one included, relays the pattern back into its
		// own hub, so the hub publisher is skipped to avoid double delivery.
		pubsub := redisCache.PSubscribe(ctx, cfg.Redis.ChannelPrefix+"*")
		defer pubsub.Close()
		go websocket.NewRelay(hub, cfg.Redis.ChannelPrefix, appLogger).Run(ctx, pubsub.Channel())

		publishers = append(publishers, services.NewRedisPublisher(redisCache, cfg.Redis.ChannelPrefix))
	} else if cfg.Realtime.HasDriver(config.NotifierDriverWebSocket) || cfg.Realtime.HasDriver(config.NotifierDriverRedis) {
		publishers = append(publishers, services.NewHubPublisher(hub))
	}

	if cfg.Realtime.HasDriver(config.NotifierDriverAMQP) {
		amqpPublisher, err := broker.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			appLogger.WithError(err).Warn("RabbitMQ unavailable, broker fan-out disabled")
		} else {
			defer amqpPublisher.Close()
			publishers = append(publishers, services.NewAMQPPublisher(amqpPublisher))
		}
	}

	notifier := services.NewNotificationService(appLogger, cfg.Realtime.PublishTimeout, publishers...)

	rideRepo := mongodb.NewRideRepository(db.Database)
	bookingRepo := mongodb.NewBookingRepository(db.Database)
	chatRepo := mongodb.NewChatRepository(db.Database)
	reviewRepo := mongodb.NewReviewRepository(db.Database)
	txManager := mongodb.NewTransactionManager(db.Client, cfg.Database.TransactionTimeout)

	bookingService := services.NewBookingService(rideRepo, bookingRepo, txManager, notifier, appLogger)
	rideService := services.NewRideService(rideRepo, bookingRepo, txManager, notifier, appLogger)
	chatService := services.NewChatService(chatRepo, bookingRepo, rideRepo, txManager, notifier, appLogger)
	reviewService := services.NewReviewService(reviewRepo, rideRepo)
	statsService := services.NewStatsService(rideRepo, bookingRepo, reviewRepo)
	realtimeAuth := services.NewRealtimeAuthService(cfg.Realtime.TokenSecret, cfg.Realtime.TokenIssuer, cfg.Realtime.TokenTTL)
	geocodeService := newGeocodeService(cfg, redisCache, appLogger)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.Identity())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RateLimitMiddleware(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst))

	routes.Setup(router, &routes.Handlers{
		Booking:  handlers.NewBookingHandler(bookingService),
		Ride:     handlers.NewRideHandler(rideService),
		Chat:     handlers.NewChatHandler(chatService),
		Review:   handlers.NewReviewHandler(reviewService),
		Stats:    handlers.NewStatsHandler(statsService),
		Geocode:  handlers.NewGeocodeHandler(geocodeService),
		Realtime: handlers.NewRealtimeHandler(realtimeAuth),
		Health:   handlers.NewHealthHandler(cfg.App.Version, checks),
		WebSocket: websocket.NewHandler(hub, realtimeAuth, websocket.HandlerConfig{
			ReadBufferSize:   cfg.WebSocket.ReadBufferSize,
			WriteBufferSize:  cfg.WebSocket.WriteBufferSize,
			HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
			MaxMessageSize:   cfg.WebSocket.MaxMessageSize,
			AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
		}, appLogger),
	}, cfg.WebSocket.Path)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Error("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	// in-flight notifications finish before their backends close
	notifier.Wait()
	appLogger.Info("Server stopped")
}

// newGeocodeService passes untyped nils for missing backends so the service
// sees a nil interface rather than a typed nil pointer.
func newGeocodeService(cfg *config.Config, redisCache *cache.RedisCache, log *logger.Logger) services.GeocodeService {
	var geocoder maps.Geocoder
	if cfg.Maps.Enabled() {
		switch cfg.Maps.Provider {
		case config.MapsProviderMapbox:
			geocoder = maps.NewMapboxProvider(maps.MapboxOptions{
				AccessToken: cfg.Maps.Mapbox.AccessToken,
				Country:     cfg.Maps.Mapbox.Country,
				Language:    cfg.Maps.Mapbox.Language,
				Timeout:     cfg.Maps.Timeout,
			})
		default:
			provider, err := maps.NewGoogleMapsProvider(maps.GoogleMapsOptions{
				APIKey:   cfg.Maps.GoogleMaps.APIKey,
				Region:   cfg.Maps.GoogleMaps.Region,
				Language: cfg.Maps.GoogleMaps.Language,
				Timeout:  cfg.Maps.Timeout,
			})
			if err != nil {
				log.WithError(err).Warn("Geocoding disabled")
			} else {
				geocoder = provider
			}
		}
	}

	var geocodeCache services.GeocodeCache
	if redisCache != nil {
		geocodeCache = redisCache
	}

	return services.NewGeocodeService(geocoder, geocodeCache, log)
}
