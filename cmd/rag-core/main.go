package main

// @title           RAG Core API
// @version         1.0
// @description     Retrieval-augmented generation backend. Chunks stored documents, embeds them into vector collections and answers queries grounded in retrieved context.

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chatstack/rag-core/internal/adapters/driven/ai"
	"github.com/chatstack/rag-core/internal/adapters/driven/auth"
	"github.com/chatstack/rag-core/internal/adapters/driven/postgres"
	redisadapter "github.com/chatstack/rag-core/internal/adapters/driven/redis"
	"github.com/chatstack/rag-core/internal/adapters/driven/storage"
	httpadapter "github.com/chatstack/rag-core/internal/adapters/driving/http"
	"github.com/chatstack/rag-core/internal/chunking"
	"github.com/chatstack/rag-core/internal/config"
	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
	"github.com/chatstack/rag-core/internal/core/services"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("rag-core %s starting", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Document storage =====
	objectStore, err := storage.NewLocalStore(cfg.StorageRoot)
	if err != nil {
		log.Fatalf("Failed to open storage root: %v", err)
	}
	log.Printf("Serving documents from %s", cfg.StorageRoot)

	// ===== AI backends =====
	prompts, err := cfg.LoadPromptConfig()
	if err != nil {
		log.Fatalf("Failed to load prompt configuration: %v", err)
	}

	embeddings, err := ai.NewEmbeddingStore(ai.EmbeddingConfig{
		Backend:    cfg.EmbeddingBackend,
		ServiceURL: cfg.EmbeddingServiceURL,
		Model:      cfg.EmbeddingModel,
		Timeout:    cfg.ServiceTimeout,
		ChromaPath: cfg.ChromaPath,
	})
	if err != nil {
		log.Fatalf("Failed to create embedding store: %v", err)
	}
	log.Printf("Using %s embedding backend", cfg.EmbeddingBackend)

	var llmOptions map[string]any
	if prompts != nil {
		llmOptions = prompts.Options
	}
	generator, err := ai.NewGenerator(ai.GeneratorConfig{
		Backend:    ai.GeneratorBackendService,
		ServiceURL: cfg.LLMServiceURL,
		Model:      cfg.LLMModel,
		Options:    llmOptions,
		Timeout:    cfg.ServiceTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	// ===== Driven adapters =====
	authAdapter := auth.NewAdapter(cfg.JWTSecret)

	// ===== PostgreSQL stores =====
	userStore := postgres.NewUserStore(db)
	trackerStore := postgres.NewProcessedDocumentStore(db)

	// ===== Session store (Redis if available, otherwise PostgreSQL) =====
	var sessionStore driven.SessionStore
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient)
		log.Println("Using Redis session store")
	} else {
		sessionStore = postgres.NewSessionStore(db)
		log.Println("Using PostgreSQL session store")
	}

	// ===== Bootstrap admin user =====
	if err := bootstrapAdmin(ctx, userStore, authAdapter, cfg); err != nil {
		log.Fatalf("Failed to bootstrap admin user: %v", err)
	}

	// ===== Services =====
	authService := services.NewAuthService(userStore, sessionStore, authAdapter)

	tracker := services.NewDocumentTracker(trackerStore, logger)
	strategies := chunking.RegistryWithDefaults(chunking.Params{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		MaxChunkSize: cfg.MaxChunkSize,
		MinChunkSize: cfg.MinChunkSize,
	})
	chunkerService := services.NewChunkerService(objectStore, embeddings, tracker, strategies, services.ChunkerConfig{
		DefaultCollection: cfg.DefaultCollection,
		DefaultStrategy:   cfg.DefaultStrategy,
	}, logger)

	promptTemplate := ""
	if prompts != nil {
		promptTemplate = prompts.Template
	}
	ragService := services.NewRAGService(embeddings, generator, services.RAGConfig{
		DefaultCollection:   cfg.DefaultCollection,
		SimilarityThreshold: cfg.SimilarityThreshold,
		TopK:                cfg.TopK,
		PromptTemplate:      promptTemplate,
	}, logger)

	// ===== HTTP server =====
	var redisPing httpadapter.Pinger
	if redisClient != nil {
		redisPing = redisPinger{redisClient}
	}
	server := httpadapter.NewServer(httpadapter.Config{
		Host:    cfg.Host,
		Port:    cfg.Port,
		Version: version,
	}, authService, ragService, chunkerService, db, redisPing)

	log.Printf("API server starting on %s:%d", cfg.Host, cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// bootstrapAdmin creates the initial admin account when the user table is
// empty so a fresh deployment is immediately usable.
func bootstrapAdmin(ctx context.Context, userStore driven.UserStore, authAdapter driven.AuthAdapter, cfg *config.Config) error {
	count, err := userStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := authAdapter.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userStore.Save(ctx, admin); err != nil {
		return err
	}

	log.Printf("Created initial admin user %s", cfg.AdminEmail)
	return nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
