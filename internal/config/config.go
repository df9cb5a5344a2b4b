package config

import (
	"os"
	"strconv"
	"time"

	"github.com/t9fiction/Solana-Task-Manager/internal/logger"
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
	"github.com/t9fiction/Solana-Task-Manager/internal/task"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort   string
	JWTSecret string

	// Ledger
	LedgerMode  string // "rpc" or "memory"
	Cluster     solana.Cluster
	RPCEndpoint string
	RPCAPIKey   string
	ProgramID   solana.PublicKey

	// Auth
	AuthDomain string

	// Index database (optional; empty disables the indexer)
	DatabaseURL     string
	IndexerInterval time.Duration

	// Redis rate limiting (optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, after loading .env if
// present. Missing required variables are fatal.
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ledgerMode := os.Getenv("LEDGER_MODE")
	if ledgerMode != "memory" {
		ledgerMode = "rpc"
	}

	cluster := solana.Cluster(os.Getenv("SOLANA_CLUSTER"))
	if cluster == "" {
		cluster = solana.ClusterDevnet
	}

	endpoint := os.Getenv("RPC_ENDPOINT")
	if endpoint == "" {
		endpoint = solana.EndpointFor(cluster)
	}

	programID := taskProgramID()

	authDomain := os.Getenv("AUTH_DOMAIN")
	if authDomain == "" {
		authDomain = "localhost"
	}

	indexerInterval := 15 * time.Second
	if v := os.Getenv("INDEXER_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			indexerInterval = time.Duration(n) * time.Second
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:         port,
		JWTSecret:       jwtSecret,
		LedgerMode:      ledgerMode,
		Cluster:         cluster,
		RPCEndpoint:     endpoint,
		RPCAPIKey:       os.Getenv("RPC_API_KEY"),
		ProgramID:       programID,
		AuthDomain:      authDomain,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		IndexerInterval: indexerInterval,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogJSON:         os.Getenv("LOG_JSON") == "true",
	}
}

func taskProgramID() solana.PublicKey {
	v := os.Getenv("PROGRAM_ID")
	if v == "" {
		return task.ProgramID
	}
	pk, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		logger.Fatal("PROGRAM_ID is not a valid base58 address", "error", err)
	}
	return pk
}
