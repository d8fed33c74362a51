package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/interlingo/backend/config"
	"github.com/interlingo/backend/internal/agent"
	"github.com/interlingo/backend/internal/logger"
	"github.com/interlingo/backend/internal/providers/media"
	"github.com/interlingo/backend/internal/providers/stt"
	"github.com/interlingo/backend/internal/providers/translate"
	"github.com/interlingo/backend/internal/providers/tts"
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
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sttProvider, err := stt.NewGoogleSpeech(ctx)
	if err != nil {
		log.Fatalf("stt init error: %v", err)
	}
	defer sttProvider.Close()

	translator, err := translate.NewVertexGemini(ctx,
		os.Getenv("GCP_PROJECT"),
		os.Getenv("GCP_LOCATION"),
		os.Getenv("TRANSLATE_MODEL"),
	)
	if err != nil {
		log.Fatalf("translate init error: %v", err)
	}
	defer translator.Close()

	ttsProvider, err := tts.NewGoogleTTS(ctx)
	if err != nil {
		log.Fatalf("tts init error: %v", err)
	}
	defer ttsProvider.Close()

	mediaProvider, err := media.NewLiveKit(
		os.Getenv("MEDIA_HOST"),
		os.Getenv("MEDIA_API_KEY"),
		os.Getenv("MEDIA_API_SECRET"),
	)
	if err != nil {
		log.Fatalf("media init error: %v", err)
	}
	defer mediaProvider.Close()

	transcriptSvc := services.NewTranscriptService(
		mongorepo.NewTranscriptRepo(config.MongoDatabase()),
		24*time.Hour,
	)

	pool := &agent.WorkerPool{
		Redis:        config.RedisClient,
		Participants: pgrepo.NewParticipantRepo(config.PostgresDB),
		Transcripts:  transcriptSvc,
		Media:        mediaProvider,
		STT:          sttProvider,
		Translate:    translator,
		TTS:          ttsProvider,
		Logger:       l,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("worker pool error: %v", err)
	}
	l.Info("translation agent worker started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	l.Info("shutting down")
	cancel()
	time.Sleep(time.Second)
}
