package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

type feedClient struct {
	conn    *websocket.Conn
	eventID uint
	send    chan []byte
}

// SummaryFeed pushes an event's summary to its websocket subscribers after
// every committed booking. It is a BookingNotifier.
type SummaryFeed struct {
	svc      SummaryService
	upgrader websocket.Upgrader

	clients    map[uint]map[*feedClient]struct{}
	register   chan *feedClient
	unregister chan *feedClient
	updates    chan uint
	done       chan struct{}
}

func NewSummaryFeed(svc SummaryService, allowedOrigins []string) *SummaryFeed {
	return &SummaryFeed{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		clients:    make(map[uint]map[*feedClient]struct{}),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		updates:    make(chan uint, 256),
		done:       make(chan struct{}),
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Run owns the subscriber set until ctx is done.
func (f *SummaryFeed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(f.done)
			for _, subs := range f.clients {
				for c := range subs {
					close(c.send)
				}
			}
			f.clients = make(map[uint]map[*feedClient]struct{})
			return
		case c := <-f.register:
			if f.clients[c.eventID] == nil {
				f.clients[c.eventID] = make(map[*feedClient]struct{})
			}
			f.clients[c.eventID][c] = struct{}{}
		case c := <-f.unregister:
			f.remove(c)
		case eventID := <-f.updates:
			f.broadcast(ctx, eventID)
		}
	}
}

func (f *SummaryFeed) remove(c *feedClient) {
	subs := f.clients[c.eventID]
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	close(c.send)
	if len(subs) == 0 {
		delete(f.clients, c.eventID)
	}
}

func (f *SummaryFeed) broadcast(ctx context.Context, eventID uint) {
	subs := f.clients[eventID]
	if len(subs) == 0 {
		return
	}

	summary, err := f.svc.Summarize(ctx, eventID)
	if err != nil {
		zap.L().Warn("summary feed: failed to summarize", zap.Uint("event_id", eventID), zap.Error(err))
		return
	}

	msg, err := json.Marshal(summary)
	if err != nil {
		return
	}

	for c := range subs {
		select {
		case c.send <- msg:
		default:
			// Slow subscriber.
			f.remove(c)
		}
	}
}

// BookingConfirmed never blocks; updates beyond the buffer are dropped
// because the next one carries the same totals.
func (f *SummaryFeed) BookingConfirmed(_ context.Context, _ domain.TicketGrant, event domain.Event) {
	select {
	case f.updates <- event.ID:
	default:
	}
}

// Serve upgrades the request and subscribes it to the event of initial.
func (f *SummaryFeed) Serve(w http.ResponseWriter, r *http.Request, initial domain.EventSummary) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Debug("summary feed: upgrade failed", zap.Error(err))
		return
	}

	first, err := json.Marshal(initial)
	if err != nil {
		_ = conn.Close()
		return
	}

	c := &feedClient{
		conn:    conn,
		eventID: initial.EventID,
		send:    make(chan []byte, sendBuffer),
	}
	c.send <- first

	select {
	case f.register <- c:
	case <-f.done:
		_ = conn.Close()
		return
	case <-r.Context().Done():
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(f)
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the close; clients send nothing.
func (c *feedClient) readPump(f *SummaryFeed) {
	defer func() {
		select {
		case f.unregister <- c:
		case <-f.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("summary feed: read failed", zap.Error(err))
			}
			return
		}
	}
}
