package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/race"
	"github.com/abrezinsky/lightsout/internal/services"
	"github.com/abrezinsky/lightsout/internal/sound"
)

// Message types
const (
	TypeCue          = "cue"
	TypeRaceState    = "race_state"
	TypeSettings     = "settings"
	TypeChampionship = "championship"
	TypeError        = "error"

	TypeStart = "start"
	TypeReact = "react"
	TypeReset = "reset"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // game clients are served from the LAN address
	},
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	races      services.RaceServicer
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// inbound is a command sent by a client
type inbound struct {
	Type    string `json:"type"`
	Payload struct {
		SeasonID string `json:"season_id"`
		RaceID   string `json:"race_id"`
	} `json:"payload"`
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, races services.RaceServicer) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		races:      races,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// Stop ends the main loop and disconnects every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

			// New clients start from the current race state
			client.send <- models.WSMessage{
				Type:    TypeRaceState,
				Payload: h.races.State(context.Background()),
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						select {
						case h.unregister <- c:
						case <-h.done:
						}
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastMessage queues a message for every connected client. It never
// blocks; the message is dropped when the queue is full.
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	select {
	case h.broadcast <- models.WSMessage{Type: msgType, Payload: payload}:
	default:
		h.log.Warn("Broadcast queue full, dropping message", "type", msgType)
	}
}

// Play implements sound.Sink by forwarding cues to clients
func (h *Hub) Play(cue sound.Cue) {
	h.BroadcastMessage(TypeCue, map[string]interface{}{"cue": cue})
}

// BroadcastRaceState pushes a race snapshot to clients
func (h *Hub) BroadcastRaceState(snap race.Snapshot) {
	h.BroadcastMessage(TypeRaceState, snap)
}

// BroadcastSettings implements services.Broadcaster
func (h *Hub) BroadcastSettings(settings models.GameSettings) {
	h.BroadcastMessage(TypeSettings, settings)
}

// BroadcastSeason implements services.Broadcaster
func (h *Hub) BroadcastSeason(season models.ChampionshipSeason) {
	h.BroadcastMessage(TypeChampionship, season)
}

// handle runs a client command. Race state changes reach every client
// through the session's change broadcasts; only failures are answered
// directly.
func (h *Hub) handle(c *Client, msg inbound) {
	ctx := context.Background()
	var err error

	switch msg.Type {
	case TypeReact:
		h.races.React(ctx)
	case TypeReset:
		h.races.Reset(ctx)
	case TypeStart:
		if msg.Payload.RaceID != "" {
			_, err = h.races.StartChampionshipRace(ctx, msg.Payload.SeasonID, msg.Payload.RaceID)
		} else {
			_, err = h.races.StartQuickRace(ctx)
		}
	default:
		h.log.Debug("Ignoring unknown message", "type", msg.Type)
		return
	}

	if err != nil {
		h.log.Debug("Client command failed", "type", msg.Type, "error", err)
		c.reply(models.WSMessage{Type: TypeError, Payload: map[string]interface{}{"error": err.Error()}})
	}
}

// reply queues a message for this client only
func (c *Client) reply(msg models.WSMessage) {
	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debug("Malformed message", "error", err)
			continue
		}
		c.hub.log.Debug("Received message", "type", msg.Type)
		c.hub.handle(c, msg)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, err := json.Marshal(message)
			if err != nil {
				c.hub.log.Error("Failed to encode message", "type", message.Type, "error", err)
				w.Close()
				continue
			}
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, sendBuffer),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}

var _ sound.Sink = (*Hub)(nil)
var _ services.Broadcaster = (*Hub)(nil)
