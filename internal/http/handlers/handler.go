package handlers

import (
	"github.com/t9fiction/Solana-Task-Manager/internal/repository"
	"github.com/t9fiction/Solana-Task-Manager/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler bundles the services behind the REST surface.
type Handler struct {
	Tasks      *service.TaskService
	WalletAuth *service.WalletAuthService

	// TaskIndex is nil when no index database is configured; listing then
	// always reads the ledger directly.
	TaskIndex *repository.TaskIndexRepository
}

func NewHandler(tasks *service.TaskService, walletAuth *service.WalletAuthService, taskIndex *repository.TaskIndexRepository) *Handler {
	return &Handler{
		Tasks:      tasks,
		WalletAuth: walletAuth,
		TaskIndex:  taskIndex,
	}
}

// callerWallet extracts the authenticated wallet set by the JWT middleware.
func callerWallet(c *gin.Context) (string, bool) {
	v, ok := c.Get("wallet")
	if !ok {
		return "", false
	}
	wallet, ok := v.(string)
	return wallet, ok && wallet != ""
}
