package handlers

import (
	"errors"
	"net/http"

	"github.com/t9fiction/Solana-Task-Manager/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthChallenge issues a one-time sign-in challenge for a wallet.
// Expects {"wallet": "<base58>"}.
func (h *Handler) AuthChallenge(c *gin.Context) {
	var req struct {
		Wallet string `json:"wallet"`
	}
	if err := c.BindJSON(&req); err != nil || req.Wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet required"})
		return
	}

	nonce, message, err := h.WalletAuth.IssueChallenge(req.Wallet)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce, "message": message})
}

// AuthVerify checks the signed challenge and issues a session token.
// Expects {"wallet": "<base58>", "nonce": "...", "signature": "<base64>"}.
func (h *Handler) AuthVerify(c *gin.Context) {
	var req struct {
		Wallet    string `json:"wallet"`
		Nonce     string `json:"nonce"`
		Signature string `json:"signature"`
	}
	if err := c.BindJSON(&req); err != nil || req.Wallet == "" || req.Nonce == "" || req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.WalletAuth.VerifyChallenge(req.Wallet, req.Nonce, req.Signature); err != nil {
		if errors.Is(err, service.ErrChallengeNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "challenge not found or expired"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
		return
	}

	token, err := service.GenerateJWT(req.Wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "wallet": req.Wallet})
}
