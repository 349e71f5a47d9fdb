package stream

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const feedPattern = "movements:*:feed"

// Client is a single websocket subscriber for one owner's feed.
type Client struct {
	ownerID string
	Send    chan []byte
}

// Hub fans accepted movement events out to websocket subscribers. When a
// Redis client is configured, events are published through Redis pub/sub so
// every instance sees submissions accepted by its peers. Without Redis the
// hub degrades to in-process delivery.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]struct{}
	rdb     *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		rdb:     rdb,
	}
}

func channelFor(ownerID string) string {
	return "movements:" + ownerID + ":feed"
}

func ownerFromChannel(channel string) string {
	trimmed := strings.TrimPrefix(channel, "movements:")
	trimmed = strings.TrimSuffix(trimmed, ":feed")
	return trimmed
}

// Run consumes the Redis feed channels and delivers messages to local
// subscribers. It returns when ctx is cancelled or the subscription drops.
// No-op when the hub has no Redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	sub := h.rdb.PSubscribe(ctx, feedPattern)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			h.deliver(ownerFromChannel(msg.Channel), []byte(msg.Payload))
		}
	}
}

func (h *Hub) Register(ownerID string) *Client {
	client := &Client{
		ownerID: ownerID,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[ownerID] == nil {
		h.clients[ownerID] = make(map[*Client]struct{})
	}
	h.clients[ownerID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.ownerID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.ownerID)
	}
	close(client.Send)
}

// Broadcast publishes an event for one owner's feed. With Redis configured
// the event goes through pub/sub and comes back via Run, so it is not also
// delivered locally here.
func (h *Hub) Broadcast(ownerID string, msg []byte) {
	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), channelFor(ownerID), msg).Err(); err != nil {
			log.Printf("stream: publish failed for %s: %v", ownerID, err)
		}
		return
	}
	h.deliver(ownerID, msg)
}

func (h *Hub) deliver(ownerID string, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[ownerID] {
		select {
		case client.Send <- msg:
		default:
			// slow consumer, drop the event rather than block the hub
		}
	}
}
