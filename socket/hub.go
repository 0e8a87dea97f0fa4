package socket

import (
	"context"
	"encoding/json"
	"sync"

	"blogposts/pkg/logger"
)

const (
	PostCreatedType = "POST_CREATED"
	PostUpdatedType = "POST_UPDATED"
	PostDeletedType = "POST_DELETED"

	// allPosts is the room of clients that did not pick a single post.
	allPosts = ""

	broadcastBuffer = 256
)

type FeedMessage struct {
	Type    string          `json:"type"`
	PostID  string          `json:"post_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan FeedMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan FeedMessage, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is done, closing every
// client it still holds.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.PostID] == nil {
				h.Rooms[client.PostID] = make(map[*Client]bool)
			}
			h.Rooms[client.PostID][client] = true
			h.mu.Unlock()
			logger.Sugar.Debugf("Feed client joined room %q", client.PostID)

		case client := <-h.Unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling feed message: %v", err)
				continue
			}

			// Collect recipients under the lock, send outside of it.
			h.mu.Lock()
			recipients := make([]*Client, 0, len(h.Rooms[allPosts])+len(h.Rooms[msg.PostID]))
			for client := range h.Rooms[allPosts] {
				recipients = append(recipients, client)
			}
			if msg.PostID != allPosts {
				for client := range h.Rooms[msg.PostID] {
					recipients = append(recipients, client)
				}
			}
			h.mu.Unlock()

			for _, client := range recipients {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging; drop it instead of blocking the hub.
					logger.Sugar.Warnf("Feed client in room %q has a full send buffer. Dropping.", client.PostID)
					h.mu.Lock()
					h.removeLocked(client)
					h.mu.Unlock()
				}
			}
		}
	}
}

// Publish queues a message for broadcast without blocking the caller. When
// the queue is full the message is dropped.
func (h *Hub) Publish(msg FeedMessage) {
	select {
	case h.Broadcast <- msg:
	default:
		logger.Sugar.Warnf("Feed broadcast queue is full, dropping %s for post %s", msg.Type, msg.PostID)
	}
}

func (h *Hub) register(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// ClientCount reports how many clients are subscribed across all rooms.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, clients := range h.Rooms {
		n += len(clients)
	}
	return n
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.Rooms[client.PostID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.Rooms, client.PostID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, clients := range h.Rooms {
		for client := range clients {
			close(client.Send)
		}
		delete(h.Rooms, room)
	}
}
