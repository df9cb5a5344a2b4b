package middleware

import (
	"net/http"
	"strings"

	"github.com/t9fiction/Solana-Task-Manager/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT authenticates requests with a Bearer session token and stores the
// caller's wallet address (base58) in the gin context under "wallet".
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		wallet, err := service.ParseJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("wallet", wallet)
		c.Next()
	}
}
