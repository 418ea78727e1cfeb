package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/events"
)

// ConnectionManager manages WebSocket connections per player and pushes each
// player's session events to every connection they have open
type ConnectionManager struct {
	// Connection pools organized by player ID
	playerConnections map[string]map[*Connection]bool
	mu                sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan events.Event
	dropped     int64

	onDisconnect func(playerID string)
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID       string
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte
	Manager  *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// ConnectionStats is the payload of the stats endpoint
type ConnectionStats struct {
	TotalConnections  int            `json:"total_connections"`
	ActivePlayers     int            `json:"active_players"`
	PlayerConnections map[string]int `json:"player_connections"`
	DroppedEvents     int64          `json:"dropped_events"`
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		playerConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan events.Event, 1000),
	}
}

// Start processes queued events until ctx is done
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case event := <-cm.broadcastCh:
			cm.handleBroadcast(event)
		}
	}
}

// Publish queues an event for the connections of event.PlayerID. It never blocks.
func (cm *ConnectionManager) Publish(_ context.Context, event events.Event) error {
	select {
	case cm.broadcastCh <- event:
		return nil
	default:
		cm.mu.Lock()
		cm.dropped++
		cm.mu.Unlock()
		log.Warn().
			Str("player_id", event.PlayerID).
			Str("event_type", string(event.Type)).
			Msg("broadcast channel full, dropping message")
		return fmt.Errorf("gateway: broadcast channel full")
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, playerID string) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		PlayerID:    playerID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBuffer),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("player_id", playerID).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.playerConnections[conn.PlayerID] == nil {
		cm.playerConnections[conn.PlayerID] = make(map[*Connection]bool)
	}
	cm.playerConnections[conn.PlayerID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("player_id", conn.PlayerID).
		Int("player_connections", len(cm.playerConnections[conn.PlayerID])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	connections, exists := cm.playerConnections[conn.PlayerID]
	if !exists {
		cm.mu.Unlock()
		return
	}
	if _, exists := connections[conn]; !exists {
		cm.mu.Unlock()
		return
	}
	delete(connections, conn)
	close(conn.Send)

	last := len(connections) == 0
	if last {
		delete(cm.playerConnections, conn.PlayerID)
	}
	onDisconnect := cm.onDisconnect
	cm.mu.Unlock()

	log.Info().
		Str("connection_id", conn.ID).
		Str("player_id", conn.PlayerID).
		Msg("connection unregistered")

	if last && onDisconnect != nil {
		onDisconnect(conn.PlayerID)
	}
}

// OnDisconnect registers fn to run when a player's last connection closes.
func (cm *ConnectionManager) OnDisconnect(fn func(playerID string)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onDisconnect = fn
}

// Connected reports whether the player has at least one open connection.
func (cm *ConnectionManager) Connected(playerID string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.playerConnections[playerID]) > 0
}

func (cm *ConnectionManager) handleBroadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	// Send is only closed under the write lock, so sending under the read lock is safe.
	var slow []*Connection
	cm.mu.RLock()
	connections := cm.playerConnections[event.PlayerID]
	for conn := range connections {
		select {
		case conn.Send <- data:
		default:
			slow = append(slow, conn)
		}
	}
	delivered := len(connections) - len(slow)
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("player_id", conn.PlayerID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("event_type", string(event.Type)).
		Str("player_id", event.PlayerID).
		Int("connections", delivered).
		Msg("event broadcasted")
}

// Stats returns statistics about active connections
func (cm *ConnectionManager) Stats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		ActivePlayers:     len(cm.playerConnections),
		PlayerConnections: make(map[string]int, len(cm.playerConnections)),
		DroppedEvents:     cm.dropped,
	}
	for playerID, connections := range cm.playerConnections {
		stats.TotalConnections += len(connections)
		stats.PlayerConnections[playerID] = len(connections)
	}
	return stats
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, connections := range cm.playerConnections {
		for conn := range connections {
			all = append(all, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range all {
		cm.unregisterConnection(conn)
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump keeps the read deadline fresh and notices when the client goes away.
// Commands travel over RPC, so incoming frames are only logged.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		log.Debug().
			Str("connection_id", c.ID).
			Str("player_id", c.PlayerID).
			Int("bytes", len(message)).
			Msg("received client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
