package handlers

import (
	"net/http"
	"os"

	"github.com/t9fiction/Solana-Task-Manager/internal/logger"
	"github.com/t9fiction/Solana-Task-Manager/internal/service"
	"github.com/t9fiction/Solana-Task-Manager/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades the connection and streams task lifecycle events. Browsers
// cannot set headers on websocket handshakes, so the JWT rides in ?token=.
// ?author= narrows the stream to one author's tasks.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		wallet, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		authorFilter := c.Query("author")

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := ws.NewClient(wallet, authorFilter, conn, hub)
		go client.Run()
	}
}
