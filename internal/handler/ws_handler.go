package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"proconnect/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// HandleWebSocket godoc
// @Summary      Open the live push channel
// @Description  Upgrades to a websocket keyed by the authenticated user. The server emits only new_message events; client payloads are ignored.
// @Tags         ws
// @Security     BearerAuth
// @Param        token query string true "Bearer token"
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (h *Handler) HandleWebSocket(c *gin.Context) {
	// Browsers cannot set headers on websocket requests, so the token
	// arrives as a query parameter.
	token := strings.TrimPrefix(c.Query("token"), "Bearer ")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	userID, err := jwt.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed for user %d: %v", userID, err)
		return
	}

	ch, handle := h.registry.Register(userID)
	defer h.registry.Unregister(userID, handle)
	defer conn.Close()

	done := make(chan struct{})

	// Writer: pump events from the presence channel onto the socket. The
	// channel is closed either by Unregister or by a newer registration for
	// the same user.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case data, ok := <-ch:
				if !ok {
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Reader: the client sends nothing meaningful on this channel; reading
	// just detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(done)
}
