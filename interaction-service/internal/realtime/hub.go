package realtime

import (
	"context"
	"encoding/json"
	"sync"

	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/pubsub"
)

// Hub tracks the websocket clients of this instance and delivers events
// consumed from the real-time channels to them.
type Hub struct {
	cfg Config

	// userID -> clientID -> client
	clients map[string]map[string]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	// closed once Run returns
	done chan struct{}
}

// NewHub creates a hub.
func NewHub(cfg Config) *Hub {
	return &Hub{
		cfg:        cfg.withDefaults(),
		clients:    make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.UserID] == nil {
				h.clients[c.UserID] = make(map[string]*Client)
			}
			h.clients[c.UserID][c.ID] = c
			h.mu.Unlock()
		case c := <-h.unregister:
			h.remove(c)
		}
	}
}

// Register adds a client. Once the hub has stopped the client's send
// channel is closed instead, so its pumps wind down.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

// Unregister removes a client and closes its send channel. After the hub
// has stopped every known client is already closed, so it returns at once.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	byID, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := byID[c.ID]; !ok {
		return
	}
	delete(byID, c.ID)
	close(c.Send)
	if len(byID) == 0 {
		delete(h.clients, c.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, byID := range h.clients {
		for _, c := range byID {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, byID := range h.clients {
		n += len(byID)
	}
	return n
}

// Consume subscribes to every real-time channel and delivers what arrives
// until ctx is done or the subscription closes.
func (h *Hub) Consume(ctx context.Context, sub pubsub.Subscriber) error {
	events, err := sub.SubscribePattern(ctx, pubsub.RealtimePattern)
	if err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				h.Deliver(event)
			}
		}
	}()
	return nil
}

// Deliver sends an event to its scoped user, or to everyone when unscoped.
// Clients whose buffers are full miss the event.
func (h *Hub) Deliver(event *pubsub.Event) {
	ns, ok := NamespaceFor(event.Type)
	if !ok {
		l := pkglog.L()
		l.Debug().Str("event", event.Type).Msg("hub: dropping unknown event")
		return
	}
	data, err := json.Marshal(Frame{Namespace: ns, Event: event.Type, Data: event.Payload})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if event.Scope != "" {
		for _, c := range h.clients[event.Scope] {
			h.send(c, data)
		}
		return
	}
	for _, byID := range h.clients {
		for _, c := range byID {
			h.send(c, data)
		}
	}
}

func (h *Hub) send(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		l := pkglog.L()
		l.Warn().Str("client_id", c.ID).Str("user_id", c.UserID).Msg("hub: client buffer full, dropping event")
	}
}
