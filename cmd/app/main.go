package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/t9fiction/Solana-Task-Manager/internal/config"
	"github.com/t9fiction/Solana-Task-Manager/internal/db"
	"github.com/t9fiction/Solana-Task-Manager/internal/http/handlers"
	"github.com/t9fiction/Solana-Task-Manager/internal/http/middleware"
	"github.com/t9fiction/Solana-Task-Manager/internal/indexer"
	"github.com/t9fiction/Solana-Task-Manager/internal/ledger"
	"github.com/t9fiction/Solana-Task-Manager/internal/logger"
	"github.com/t9fiction/Solana-Task-Manager/internal/repository"
	"github.com/t9fiction/Solana-Task-Manager/internal/service"
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
	"github.com/t9fiction/Solana-Task-Manager/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	httpServer "github.com/t9fiction/Solana-Task-Manager/internal/http"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT()

	// Ledger: real RPC node, or the in-memory ledger for local development.
	var (
		l     ledger.Ledger
		chain handlers.ChainHealth
	)
	if cfg.LedgerMode == "memory" {
		logger.Warn("using in-memory ledger, state is lost on restart")
		l = ledger.NewMemoryLedger()
	} else {
		client := solana.NewClient(cfg.RPCEndpoint, cfg.RPCAPIKey)
		l = ledger.NewRPCLedger(client)
		chain = client
		logger.Info("ledger RPC configured",
			"cluster", string(cfg.Cluster),
			"endpoint", cfg.RPCEndpoint,
			"program_id", cfg.ProgramID.String(),
		)
	}

	hub := ws.NewHub()
	tasks := service.NewTaskService(l, cfg.ProgramID, hub)
	walletAuth := service.NewWalletAuthService(cfg.AuthDomain)

	// Optional index database; listings fall back to ledger scans without it.
	var (
		dbPool    *pgxpool.Pool
		taskIndex *repository.TaskIndexRepository
	)
	if cfg.DatabaseURL != "" {
		dbPool = db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()
		taskIndex = repository.NewTaskIndexRepository(dbPool)
	}

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	h := handlers.NewHandler(tasks, walletAuth, taskIndex)
	health := handlers.NewHealthHandler(chain, dbPool, version)

	r := gin.Default()

	// CORS for browser wallets on another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, h, health, hub)

	indexCtx, stopIndexer := context.WithCancel(context.Background())
	defer stopIndexer()
	if taskIndex != nil {
		go indexer.New(l, cfg.ProgramID, taskIndex, cfg.IndexerInterval).Run(indexCtx)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopIndexer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
