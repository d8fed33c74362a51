package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/interlingo/backend/config"
	"github.com/interlingo/backend/internal/api/handlers"
	"github.com/interlingo/backend/internal/api/middleware"
	"github.com/interlingo/backend/internal/api/routes"
	"github.com/interlingo/backend/internal/cache"
	"github.com/interlingo/backend/internal/capability"
	"github.com/interlingo/backend/internal/logger"
	"github.com/interlingo/backend/internal/models"
	"github.com/interlingo/backend/internal/providers/media"
	mongorepo "github.com/interlingo/backend/internal/repositories/mongo"
	pgrepo "github.com/interlingo/backend/internal/repositories/postgres"
	"github.com/interlingo/backend/internal/services"
)

func main() {
	_ = godotenv.Load()
	l := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.PostgresDB.AutoMigrate(
		&models.Room{},
		&models.Participant{},
		&models.CallHistory{},
		&models.UserCallHistory{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("Mongo index error: %v", err)
	}

	roomRepo := pgrepo.NewRoomRepo(config.PostgresDB)
	participantRepo := pgrepo.NewParticipantRepo(config.PostgresDB)
	callRepo := pgrepo.NewCallHistoryRepo(config.PostgresDB)
	transcriptRepo := mongorepo.NewTranscriptRepo(config.MongoDatabase())

	redisCache := cache.NewRedisCache(config.RedisClient)

	minter, err := capability.NewMinter(
		os.Getenv("MEDIA_API_KEY"),
		os.Getenv("MEDIA_API_SECRET"),
		capabilityTTL(),
	)
	if err != nil {
		// the join endpoint returns 500 per request until credentials are set
		l.WithError(err).Error("capability minter unavailable")
	}

	var dispatcher *services.SessionDispatcher
	if provider, err := media.NewLiveKit(
		os.Getenv("MEDIA_HOST"),
		os.Getenv("MEDIA_API_KEY"),
		os.Getenv("MEDIA_API_SECRET"),
	); err != nil {
		l.WithError(err).Warn("media provider unavailable; joins will skip dispatch")
	} else {
		dispatcher = services.NewSessionDispatcher(provider, l)
	}

	roomSvc := services.NewRoomService(roomRepo, participantRepo, redisCache)
	joinSvc := services.NewJoinService(roomSvc, participantRepo, roomRepo, minter, dispatcher)
	historySvc := services.NewHistoryService(callRepo, participantRepo)
	transcriptSvc := services.NewTranscriptService(transcriptRepo, 24*time.Hour)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Room:       handlers.NewRoomHandler(roomSvc, joinSvc),
		Call:       handlers.NewCallHandler(historySvc),
		Transcript: handlers.NewTranscriptHandler(transcriptSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func capabilityTTL() time.Duration {
	if raw := os.Getenv("CAPABILITY_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return time.Hour
}
