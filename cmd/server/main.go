package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"gopkg.in/yaml.v3"

	"github.com/vaibh/video-chat/internal/cache"
	"github.com/vaibh/video-chat/internal/chat"
	"github.com/vaibh/video-chat/internal/cleanup"
	"github.com/vaibh/video-chat/internal/embedding"
	"github.com/vaibh/video-chat/internal/handlers"
	"github.com/vaibh/video-chat/internal/ingest"
	"github.com/vaibh/video-chat/internal/media"
	"github.com/vaibh/video-chat/internal/queue"
	"github.com/vaibh/video-chat/internal/search"
	"github.com/vaibh/video-chat/internal/storage"
	"github.com/vaibh/video-chat/internal/store"
	"github.com/vaibh/video-chat/internal/transcription"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	OpenAI struct {
		APIKeyEnv       string `yaml:"api_key_env"`
		BaseURL         string `yaml:"base_url"`
		ChatModel       string `yaml:"chat_model"`
		EmbeddingModel  string `yaml:"embedding_model"`
		WhisperModel    string `yaml:"whisper_model"`
		UseLocalWhisper bool   `yaml:"use_local_whisper"`
	} `yaml:"openai"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Storage struct {
		TempDir  string `yaml:"temp_dir"`
		MediaDir string `yaml:"media_dir"`
		Database string `yaml:"database"`
	} `yaml:"storage"`

	Cache struct {
		TTLHours int `yaml:"ttl_hours"`
	} `yaml:"cache"`

	Search struct {
		Boost         float64 `yaml:"boost"`
		MinSimilarity float64 `yaml:"min_similarity"`
		TopK          int     `yaml:"top_k"`
	} `yaml:"search"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Limits struct {
		MaxFileSizeMB      int     `yaml:"max_file_size_mb"`
		MaxDurationSeconds float64 `yaml:"max_duration_seconds"`
	} `yaml:"limits"`
}

func main() {
	// Load configuration
	config, err := loadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure directories exist
	if err := cleanup.EnsureTempDirExists(config.Storage.TempDir); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}
	if err := os.MkdirAll(config.Storage.MediaDir, 0755); err != nil {
		log.Fatalf("Failed to create media directory: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	// Initialize components
	log.Println("Initializing components...")

	apiKey := os.Getenv(config.OpenAI.APIKeyEnv)
	if apiKey == "" && !config.OpenAI.UseLocalWhisper {
		log.Printf("WARNING: %s is not set; API calls will fail", config.OpenAI.APIKeyEnv)
	}

	// Cache backend (optional Redis - falls back to in-memory)
	var kv cache.KeyValueStore
	redisStore, err := cache.NewRedisStore(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
	if err != nil {
		log.Printf("WARNING: Redis not available: %v", err)
		log.Println("Falling back to in-memory cache (records lost on restart)")
		kv = cache.NewMemoryStore()
	} else {
		log.Println("Redis cache enabled")
		kv = redisStore
	}

	ttl := time.Duration(config.Cache.TTLHours) * time.Hour
	videos := store.NewVideoStore(kv, ttl)

	// Durable catalog
	catalog, err := storage.NewCatalog(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer catalog.Close()

	files := storage.NewVideoFiles(config.Storage.MediaDir)

	// Speech to text
	var asr transcription.SpeechToText
	if config.OpenAI.UseLocalWhisper {
		asr = transcription.NewLocalWhisper(config.OpenAI.WhisperModel)
	} else {
		asr = transcription.NewOpenAIWhisper(apiKey, config.OpenAI.BaseURL, config.OpenAI.WhisperModel)
	}

	embedder := embedding.NewOpenAIEmbedder(apiKey, config.OpenAI.BaseURL, config.OpenAI.EmbeddingModel)
	completer := chat.NewOpenAICompleter(apiKey, config.OpenAI.BaseURL, config.OpenAI.ChatModel)

	// Ingestion pipeline
	orchestrator := ingest.NewOrchestrator(
		media.FFProbe{},
		asr,
		embedder,
		media.FFMpegThumbnailer{},
		videos,
		catalog,
		files,
		config.Storage.TempDir,
		config.Limits.MaxDurationSeconds,
	)

	// Worker pool
	workerPool := queue.NewWorkerPool(config.Workers.Count, orchestrator, files)
	workerPool.Start()

	// Cleanup scheduler
	cleanupScheduler := cleanup.NewScheduler(
		config.Storage.TempDir,
		config.Cleanup.IntervalMinutes,
		config.Cleanup.MaxAgeHours,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	// Search and chat services
	ranker := search.NewRanker(embedder, config.Search.Boost, config.Search.MinSimilarity, config.Search.TopK)
	chatService := chat.NewService(completer)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(workerPool, files, config.Limits.MaxFileSizeMB)
	videoHandler := handlers.NewVideoHandler(videos, catalog, files)
	searchHandler := handlers.NewSearchHandler(videos, ranker)
	chatHandler := handlers.NewChatHandler(videos, chatService)

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := app.Group("/api")
	api.Post("/videos/upload", uploadHandler.Handle)
	api.Get("/videos", videoHandler.List)
	api.Get("/videos/:video_id/status", videoHandler.Status)
	api.Get("/videos/:video_id/stream", videoHandler.Stream)
	api.Get("/videos/:video_id/thumbnail", videoHandler.Thumbnail)
	api.Delete("/videos/:video_id", videoHandler.Delete)
	api.Post("/videos/search", searchHandler.Handle)

	// WebSocket route
	app.Get("/ws/chat/:video_id", websocket.New(chatHandler.Handle))

	// Get server logs
	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST   /api/videos/upload              - Upload video")
	log.Println("   GET    /api/videos                     - List videos")
	log.Println("   GET    /api/videos/:id/status          - Processing status")
	log.Println("   GET    /api/videos/:id/stream          - Stream video")
	log.Println("   GET    /api/videos/:id/thumbnail       - Video thumbnail")
	log.Println("   DELETE /api/videos/:id                 - Delete video")
	log.Println("   POST   /api/videos/search              - Semantic transcript search")
	log.Println("   GET    /ws/chat/:id                    - Chat websocket")
	log.Println("   GET    /logs                           - View server logs")
	log.Println("   GET    /health                         - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
