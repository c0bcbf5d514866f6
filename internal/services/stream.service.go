package services

import (
	"context"
	"log"
	"sync"
	"time"

	"speedlog/internal/models"
)

// StreamMessage is one message sent to a /rows/stream client
type StreamMessage struct {
	Type      string            `json:"type"` // "row", "pong", "error"
	Timestamp time.Time         `json:"timestamp"`
	Row       *models.MetricRow `json:"row,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// StreamClient is a connected stream subscriber
type StreamClient struct {
	ID   string
	Send chan StreamMessage
}

// NewStreamClient creates a client with a buffered send queue
func NewStreamClient(id string) *StreamClient {
	return &StreamClient{
		ID:   id,
		Send: make(chan StreamMessage, 16),
	}
}

// RowStream polls the table and pushes each newly appended row to all clients.
// It tracks how many rows have been delivered, so every row is sent once.
type RowStream struct {
	mu       sync.RWMutex
	clients  map[string]*StreamClient
	interval time.Duration
	sent     int  // rows already delivered, or present when the stream started
	primed   bool // sent has been read from the table
}

var rowStream *RowStream

// InitRowStream creates the stream hub. Call Run to start polling.
func InitRowStream(interval time.Duration) *RowStream {
	rowStream = &RowStream{
		clients:  make(map[string]*StreamClient),
		interval: interval,
	}
	return rowStream
}

// GetRowStream returns the initialized stream hub
func GetRowStream() *RowStream {
	return rowStream
}

// Run records the current table position, then polls until ctx is done
func (s *RowStream) Run(ctx context.Context) {
	s.Poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Poll(ctx)
		}
	}
}

// Poll broadcasts, in order, every row appended since the last poll.
// The first poll only records the table position.
func (s *RowStream) Poll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := historyService.load(ctx)
	if err != nil {
		log.Printf("[WS] Error reading rows: %v", err)
		return
	}

	if !s.primed || len(rows) < s.sent {
		// first poll, or the table was replaced by a shorter one
		s.sent = len(rows)
		s.primed = true
		return
	}

	for i := s.sent; i < len(rows); i++ {
		s.broadcastLocked(StreamMessage{Type: "row", Timestamp: time.Now(), Row: &rows[i]})
	}
	s.sent = len(rows)
}

// Subscribe registers client and queues the last row it would otherwise miss.
// Rows appended after that position reach the client through Poll.
func (s *RowStream) Subscribe(ctx context.Context, client *StreamClient) error {
	s.mu.Lock()
	rows, err := historyService.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.primed {
		s.sent = len(rows)
		s.primed = true
	}
	if s.sent > 0 && s.sent <= len(rows) {
		row := rows[s.sent-1]
		select {
		case client.Send <- StreamMessage{Type: "row", Timestamp: time.Now(), Row: &row}:
		default:
		}
	}
	s.clients[client.ID] = client
	total := len(s.clients)
	s.mu.Unlock()

	log.Printf("[WS] Client connected: %s (total: %d)", client.ID, total)
	return nil
}

// Register adds a client
func (s *RowStream) Register(client *StreamClient) {
	s.mu.Lock()
	s.clients[client.ID] = client
	total := len(s.clients)
	s.mu.Unlock()
	log.Printf("[WS] Client connected: %s (total: %d)", client.ID, total)
}

// Unregister removes a client and closes its send queue
func (s *RowStream) Unregister(clientID string) {
	s.mu.Lock()
	client, exists := s.clients[clientID]
	if exists {
		delete(s.clients, clientID)
		close(client.Send)
	}
	total := len(s.clients)
	s.mu.Unlock()
	if exists {
		log.Printf("[WS] Client disconnected: %s (total: %d)", clientID, total)
	}
}

// Broadcast queues msg for every client. Clients with a full queue miss it.
func (s *RowStream) Broadcast(msg StreamMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.broadcastLocked(msg)
}

func (s *RowStream) broadcastLocked(msg StreamMessage) {
	for _, client := range s.clients {
		select {
		case client.Send <- msg:
		default:
		}
	}
}

// Send queues msg for one client, dropping it if the client is gone or its queue is full
func (s *RowStream) Send(clientID string, msg StreamMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, exists := s.clients[clientID]
	if !exists {
		return
	}
	select {
	case client.Send <- msg:
	default:
	}
}

// Clients returns the number of connected clients
func (s *RowStream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
