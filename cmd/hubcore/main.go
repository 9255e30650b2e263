package main

// @title           Hub Core OAuth API
// @version         1.0
// @description     OAuth orchestration service: starts provider authorization flows, handles callbacks and hands credentials to callers exactly once.

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/agentic-hub/hub-core/internal/adapters/driven/auth"
	"github.com/agentic-hub/hub-core/internal/adapters/driven/memory"
	"github.com/agentic-hub/hub-core/internal/adapters/driven/oauth"
	"github.com/agentic-hub/hub-core/internal/adapters/driven/postgres"
	redisadapter "github.com/agentic-hub/hub-core/internal/adapters/driven/redis"
	"github.com/agentic-hub/hub-core/internal/adapters/driven/registry"
	"github.com/agentic-hub/hub-core/internal/adapters/driving/http"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
	"github.com/agentic-hub/hub-core/internal/core/services"
	"github.com/agentic-hub/hub-core/internal/worker"
)

var version = "dev"

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	log.Printf("hub-core %s starting", version)

	// Configuration from environment
	port := getEnvInt("PORT", 3001)
	baseURL := getEnv("BASE_URL", fmt.Sprintf("http://localhost:%d", port))
	clientURL := getEnv("CLIENT_URL", "http://localhost:5173")
	allowedOrigins := splitList(getEnv("ALLOWED_ORIGINS", clientURL))
	stateTTL := time.Duration(getEnvInt("STATE_TTL_MIN", 60)) * time.Minute
	redisURL := getEnv("REDIS_URL", "")
	databaseURL := getEnv("DATABASE_URL", "")
	encryptionSecret := getEnv("ENCRYPTION_SECRET", "")
	jwtSecret := getEnv("AUTH_JWT_SECRET", "")
	allowStateless := getEnvBool("OAUTH_ALLOW_STATELESS_CALLBACK", false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== PostgreSQL (optional, enables the durable save path) =====
	var db *postgres.DB
	var credentialStore driven.CredentialStore
	var encryptor *postgres.SecretEncryptor
	if databaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		var err error
		db, err = postgres.Connect(ctx, postgres.DefaultConfig(databaseURL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}

		key, err := postgres.DeriveKey(encryptionSecret)
		if err != nil {
			log.Fatalf("ENCRYPTION_SECRET is required with DATABASE_URL: %v", err)
		}
		encryptor, err = postgres.NewSecretEncryptor(key)
		if err != nil {
			log.Fatalf("Failed to create encryptor: %v", err)
		}

		credentialStore = postgres.NewCredentialStore(db, encryptor)
		log.Println("PostgreSQL connected and schema initialized")
	} else {
		log.Println("No DATABASE_URL configured; save requests will report saved=false")
	}

	// ===== Redis (optional, ephemeral stores) =====
	var redisClient *redis.Client
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
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

	// ===== Ephemeral stores (Redis > PostgreSQL > memory) =====
	var stateStore driven.StateStore
	var credentialVault driven.CredentialVault
	switch {
	case redisClient != nil:
		stateStore = redisadapter.NewStateStore(redisClient)
		credentialVault = redisadapter.NewCredentialVault(redisClient)
		log.Println("Using Redis flow stores")
	case db != nil:
		stateStore = postgres.NewStateStore(db)
		credentialVault = postgres.NewCredentialVault(db, encryptor)
		log.Println("Using PostgreSQL flow stores")
	default:
		stateStore = memory.NewStateStore(stateTTL)
		credentialVault = memory.NewCredentialVault(stateTTL)
		log.Println("Warning: using in-memory flow stores; flows do not survive restarts and multiple instances will not share state")
	}

	// ===== Driven adapters =====
	providerRegistry := registry.New(registry.EnvSecretSource{})
	oauthClient := oauth.NewClient(oauth.ClientConfig{})

	var verifier *auth.Verifier
	if jwtSecret != "" {
		verifier = auth.NewVerifier(jwtSecret)
		log.Println("Bearer-token auth enabled on API endpoints")
	}

	// ===== Core services =====
	oauthService := services.NewOAuthService(services.OAuthServiceConfig{
		Registry:               providerRegistry,
		States:                 stateStore,
		Vault:                  credentialVault,
		Client:                 oauthClient,
		BaseURL:                baseURL,
		ClientURL:              clientURL,
		FlowTTL:                stateTTL,
		AllowStatelessCallback: allowStateless,
	})
	credentialService := services.NewCredentialService(services.CredentialServiceConfig{
		Vault:    credentialVault,
		Registry: providerRegistry,
		Store:    credentialStore,
	})

	// ===== Background sweeper =====
	sweeper := worker.NewSweeper(worker.SweeperConfig{
		States: stateStore,
		Vault:  credentialVault,
	})
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// ===== HTTP server =====
	var dbPinger http.Pinger
	if db != nil {
		dbPinger = db
	}
	var redisPinger http.Pinger
	if redisClient != nil {
		redisPinger = redisPingAdapter{redisClient}
	}

	server := http.NewServer(http.Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           port,
		Version:        version,
		ClientURL:      clientURL,
		AllowedOrigins: allowedOrigins,
	}, oauthService, credentialService, verifier, dbPinger, redisPinger)

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// redisPingAdapter adapts the redis client to the health Pinger.
type redisPingAdapter struct {
	client *redis.Client
}

func (a redisPingAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
