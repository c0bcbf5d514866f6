package controllers

import (
	"log"
	"net/http"
	"time"

	"speedlog/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// access is already gated by the IP whitelist and token middleware
		return true
	},
}

// StreamRows upgrades to a websocket and pushes every newly appended row.
// The latest row the stream has delivered, if any, is sent right after connecting.
func StreamRows(c *gin.Context) {
	hub := services.GetRowStream()
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "row stream not running"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := services.NewStreamClient(c.ClientIP() + "-" + uuid.New().String()[:8])
	if err := hub.Subscribe(c.Request.Context(), client); err != nil {
		log.Printf("[WS] Subscribe error for %s: %v", client.ID, err)
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "table unavailable"))
		ws.Close()
		return
	}

	go writePump(ws, client)
	go readPump(ws, client, hub)
}

// readPump answers pings and unregisters the client when the connection ends
func readPump(ws *websocket.Conn, client *services.StreamClient, hub *services.RowStream) {
	defer func() {
		hub.Unregister(client.ID)
		ws.Close()
	}()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg services.StreamMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error from %s: %v", client.ID, err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			hub.Send(client.ID, services.StreamMessage{Type: "pong", Timestamp: time.Now()})
		default:
			log.Printf("[WS] Unknown message type from %s: %s", client.ID, msg.Type)
		}
	}
}

// writePump drains the client's queue onto the connection
func writePump(ws *websocket.Conn, client *services.StreamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteJSON(msg); err != nil {
				log.Printf("[WS] Write error to %s: %v", client.ID, err)
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
