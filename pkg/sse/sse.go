package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Client struct {
	id   string
	ch   chan string
	done chan struct{}
}

// Hub 广播进度事件给所有已连接的客户端
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	interval time.Duration
	retryMs  int
}

func NewHub(interval time.Duration) *Hub {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Hub{clients: make(map[string]*Client), interval: interval, retryMs: 5000}
}

func (h *Hub) AddClient(id string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &Client{id: id, ch: make(chan string, 64), done: make(chan struct{})}
	h.clients[id] = c
	return c
}

func (h *Hub) RemoveClient(id string) {
	h.mu.Lock()
	if c, ok := h.clients[id]; ok {
		close(c.done)
		delete(h.clients, id)
	}
	h.mu.Unlock()
}

func (h *Hub) Broadcast(data string) { h.sendAll(formatData(data)) }

func (h *Hub) BroadcastJSON(v interface{}) {
	b, _ := json.Marshal(v)
	h.sendAll(formatData(string(b)))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendAll(msg string) {
	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.ch <- msg:
		default: // 慢客户端丢弃
		}
	}
	h.mu.RUnlock()
}

func formatData(data string) string {
	return fmt.Sprintf("data: %s\n\n", data)
}

// Serve streams events to one client until it disconnects.
func (h *Hub) Serve(c *gin.Context, id string) {
	client := h.AddClient(id)
	defer h.RemoveClient(id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(c.Writer, "retry: %d\n\n", h.retryMs)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.interval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client.ch:
			if !ok {
				return false
			}
			fmt.Fprint(w, msg)
			return true
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			return true
		case <-client.done:
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}
