package live

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// read-only public feed
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades GET /ws and keeps the subscriber until it hangs up.
func WSHandler(hub *Hub, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("live-ws")

	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		for _, line := range hub.welcome("websocket") {
			_ = ws.WriteMessage(websocket.TextMessage, line)
		}
		hub.AddWS(ws)
		logger.Debug("client connected")

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		logger.Debug("client disconnected")
	}
}
