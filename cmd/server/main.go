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

	"github.com/redis/go-redis/v9"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/auth"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/cache"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/cart"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/catalog"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/checkout"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/config"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/httpapi"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/mongodb"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/orders"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/payment"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/session"
)

func main() {
	cfg := config.Load()

	// Base context for every background worker; cancelled at shutdown so
	// in-flight work stops with the server.
	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoDB, err := mongodb.ConnectMongoDB(baseCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(baseCtx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	// Cart
	cartRepo := cart.NewMongoRepository(mongoDB)
	if err := cartRepo.CreateIndexes(baseCtx); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	cartService := cart.NewService(cartRepo, cache.NewRedisCache(redisClient))

	// Catalog and its realtime feed
	catalogRepo := catalog.NewMongoRepository(mongoDB)
	feed := catalog.NewFeed(catalogRepo, catalogRepo.WatchProducts)
	go feed.Run(baseCtx)

	// Orders ledger and fulfillment pipeline
	creds := &orders.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDBName,
		MigrationsDirPath: cfg.MigrationsDirPath,
	}
	ordersRepo, err := orders.NewPostgresRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer ordersRepo.Close()
	if err := ordersRepo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	poller := orders.NewOutboxPoller(ordersRepo, cfg.KafkaBrokers...)
	defer poller.Close()
	go poller.Run(baseCtx)

	consumer := orders.NewFulfillmentConsumer(ordersRepo, cfg.KafkaBrokers...)
	defer consumer.Close()
	go consumer.Run(baseCtx)

	// Auth and sessions
	authenticator, err := auth.NewFirebaseAuthenticator(baseCtx, cfg.FirebaseCredsFile, cfg.FirebaseAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize firebase auth: %v", err)
	}

	sessions := session.NewManager(func(ctx context.Context, token string) (*session.User, error) {
		account, err := authenticator.CurrentSession(ctx, token)
		if err != nil {
			return nil, err
		}
		return &session.User{
			ID:          account.UID,
			Name:        account.Name,
			Email:       account.Email,
			AccessToken: account.Token,
		}, nil
	})

	// Payments and checkout
	processor := payment.NewBreakerProcessor(payment.NewStripeProcessor(cfg.StripeAPIKey))
	paymentsRepo := payment.NewMongoRepository(mongoDB)

	addressRepo := checkout.NewMongoAddressRepository(mongoDB)
	if err := addressRepo.CreateIndexes(baseCtx); err != nil {
		log.Fatalf("Failed to create checkout address indexes: %v", err)
	}

	checkoutService := checkout.NewService(
		checkout.NewMemoryStore(),
		addressRepo,
		cartService,
		processor,
		paymentsRepo,
		ordersRepo,
		cfg.ShippingFee,
	)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Auth:           httpapi.NewAuthHandler(authenticator, sessions, cfg.RequestTimeout),
		Cart:           httpapi.NewCartHandler(cartService, cfg.RequestTimeout),
		Products:       httpapi.NewProductHandler(catalogRepo, feed, cfg.RequestTimeout),
		Checkout:       httpapi.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		Orders:         httpapi.NewOrdersHandler(ordersRepo, cfg.RequestTimeout),
		Authenticator:  authenticator,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      http.MaxBytesHandler(router, cfg.MaxRequestBodySize),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // the SSE stream writes for the lifetime of the request
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Printf("failed to disconnect mongodb: %v", err)
	}

	log.Println("server exited")
}
