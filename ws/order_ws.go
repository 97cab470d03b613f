package ws

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"backend/entity"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Event names ที่ server ยิงออก
const (
	EventNewOrder          = "new_order"
	EventOrderStatusUpdate = "order_status_update"
)

// ErrNotRunning = มีคน Publish ก่อน Run — hub ต้อง start ตอน boot ก่อนรับ request
var ErrNotRunning = errors.New("order hub is not running")

// Event ที่กระจายให้ทุก client พร้อม order เต็ม ๆ (รวม items)
// client กรองเองว่าเกี่ยวกับตัวเองมั้ย
type Event struct {
	Event string        `json:"event"`
	Data  *entity.Order `json:"data"`
}

// OrderHub คือศูนย์กลาง fan-out ของ order events
// สร้างด้วย NewOrderHub แล้ว inject เข้า service ไม่ใช่ global singleton
type OrderHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
	running    atomic.Bool
}

func NewOrderHub() *OrderHub {
	return &OrderHub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// คอยฟัง register/unregister/broadcast ตลอดเวลา
func (h *OrderHub) Run() {
	h.running.Store(true)
	for {
		select {
		// มี client ใหม่ต่อเข้ามา
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			log.Printf("ws client connected (%d online)", h.ClientCount())

		// client หลุด/ออก
		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			log.Printf("ws client disconnected (%d online)", h.ClientCount())

		// มี event ใหม่ → กระจายให้ทุก client best-effort
		case ev := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteJSON(ev); err != nil {
					log.Printf("ws write error: %v", err)
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish ยิง event เข้า hub — เรียกหลัง transaction commit เท่านั้น
func (h *OrderHub) Publish(event string, order *entity.Order) error {
	if !h.running.Load() {
		return ErrNotRunning
	}
	h.broadcast <- Event{Event: event, Data: order}
	return nil
}

func (h *OrderHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS route: /ws/orders — ไม่มี event จาก client เข้ามา แค่ connect/disconnect
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	h.register <- conn

	go h.listen(conn)
}

// listen = drain อ่านจน connection ตาย เพื่อรู้ว่า client หลุด
func (h *OrderHub) listen(conn *websocket.Conn) {
	defer func() { h.unregister <- conn }()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
