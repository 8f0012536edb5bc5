package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/twissamodiofficial/MediQuery-Assist/config"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/agent"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/api/handlers"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/api/middleware"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/api/routes"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/cache"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/logger"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/embedding"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/llm"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/search"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/stt"
	mongorepo "github.com/twissamodiofficial/MediQuery-Assist/internal/repositories/mongo"
	pgrepo "github.com/twissamodiofficial/MediQuery-Assist/internal/repositories/postgres"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/rag"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/services"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/storage"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/workers"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	appLog := logger.New()

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	fmt.Println("MongoDB connected")

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	fmt.Println("PostgreSQL connected")

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	fmt.Println("Redis connected")

	if err := config.MigratePostgres(); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	ctx := context.Background()

	// Providers
	llmProvider, err := llm.NewVertexGemini(ctx,
		os.Getenv("GCP_PROJECT_ID"),
		env("GCP_LOCATION", "us-central1"),
		env("GEMINI_MODEL", "gemini-2.5-flash"),
	)
	if err != nil {
		log.Fatalf("Vertex AI init error: %v", err)
	}
	defer llmProvider.Close()

	embedder := embedding.NewOpenAICompatible(
		env("EMBEDDING_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		os.Getenv("EMBEDDING_API_KEY"),
		env("EMBEDDING_MODEL", "text-embedding-004"),
	)

	webSearch := search.NewSerperClient(os.Getenv("SERPER_API_KEY"))

	sttProvider, err := stt.NewGoogleSpeech(ctx)
	if err != nil {
		log.Fatalf("Speech init error: %v", err)
	}
	defer sttProvider.Close()

	var archive storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcs.Close()
		archive = gcs
	}

	// Repositories
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	sessionRepo := pgrepo.NewSessionRepo(config.PostgresDB)
	chunkRepo := pgrepo.NewDocumentChunkRepo(config.PostgresDB)
	checkpointRepo := mongorepo.NewCheckpointRepo(config.MongoClient.Database(config.MongoDatabaseName()))

	// Services
	redisCache := cache.NewRedisCache(config.RedisClient)
	checkpoints := services.NewCheckpointStore(checkpointRepo, redisCache, 10*time.Minute)

	docStore := rag.NewStore(chunkRepo, embedder, archive, appLog)
	registry := agent.NewRegistry(docStore, webSearch)
	loop := agent.NewLoop(llmProvider, registry, checkpoints, appLog)

	authSvc := services.NewAuthService(userRepo, sessionRepo, os.Getenv("JWT_SECRET"), 24*time.Hour)
	chatSvc := services.NewChatService(loop, docStore, checkpoints, appLog)
	voiceSvc := services.NewVoiceService(sttProvider, chatSvc, appLog)

	// Background voice workers
	numWorkers := 5
	if n, err := strconv.Atoi(os.Getenv("VOICE_WORKERS")); err == nil && n > 0 {
		numWorkers = n
	}
	pool := &workers.VoiceWorkerPool{
		Redis:      config.RedisClient,
		STT:        sttProvider,
		Chat:       chatSvc,
		NumWorkers: numWorkers,
		Logger:     appLog,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("voice worker start error: %v", err)
	}

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(appLog))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:         handlers.NewAuthHandler(authSvc),
		Chat:         handlers.NewChatHandler(chatSvc),
		Voice:        handlers.NewVoiceHandler(voiceSvc, chatSvc),
		Document:     handlers.NewDocumentHandler(docStore),
		Conversation: handlers.NewConversationHandler(chatSvc),
		WS:           handlers.NewWSHandler(config.RedisClient, ""),
	})

	port := env("PORT", "8080")
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
