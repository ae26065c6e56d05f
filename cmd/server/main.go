package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"geoquiz/config"
	"geoquiz/internal/cache"
	"geoquiz/internal/countries"
	"geoquiz/internal/repository"
	"geoquiz/internal/service"
	"geoquiz/internal/transport/rest"
	"geoquiz/internal/transport/ws"
)

// @title GeoQuiz API
// @version 1.0
// @description Country trivia quiz: per-session rounds over five rotating categories
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("geoquiz")

	// Redis connection
	redisAddr := cfg.RedisAddr
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// WebSocket hub for the score feed
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Stores and repositories
	store := cache.NewSessionStore(rdb)
	profileRepo := repository.NewProfileRepo(db)

	// Services
	authSvc := service.NewAuthService()
	catalog := countries.NewClient(cfg.CountriesURL)
	builder := service.NewQuestionService(rand.New(rand.NewSource(time.Now().UnixNano())))
	modeSvc := service.NewModeService(store)
	notifier := service.NewScoreNotifier()
	roundSvc := service.NewRoundService(store, catalog, builder, modeSvc, notifier)

	// Push score changes to connected clients; they pull the score back
	// over REST.
	notifier.Subscribe(wsHub.NotifyScoreChanged)

	container := &rest.Container{
		AuthService:  authSvc,
		RoundService: roundSvc,
		ProfileRepo:  profileRepo,
		WSHub:        wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/session")
		log.Println("  POST /v1/quiz/start")
		log.Println("  GET  /v1/quiz")
		log.Println("  POST /v1/quiz/{goto|next|prev|answer}")
		log.Println("  GET  /v1/quiz/score")
		log.Println("  GET/PUT /v1/profile")
		log.Println("  WS  /v1/ws/score")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
