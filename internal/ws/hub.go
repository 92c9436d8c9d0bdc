package ws

import (
	"encoding/json"
	"time"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// Event is one staff board notification.
type Event struct {
	Type  string              `json:"type"`
	Order models.OrderSummary `json:"order"`
}

const (
	EventOrderCreated  = "order_created"
	EventStatusChanged = "status_changed"
)

type companyMessage struct {
	companyID string
	payload   []byte
}

// Hub fans order events out to the websocket connections of each
// company's staff board. All client bookkeeping happens on the Run
// goroutine; the channels are the only way in.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan companyMessage
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan companyMessage, 64),
		logger:     log.WithComponent("ws_hub"),
	}
}

// Run owns the client registry. Start it once on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.companyID] == nil {
				h.clients[client.companyID] = make(map[*Client]bool)
			}
			h.clients[client.companyID][client] = true
			h.logger.Info("Staff board client connected",
				"company_id", client.companyID, "clients", len(h.clients[client.companyID]))

		case client := <-h.unregister:
			if company, ok := h.clients[client.companyID]; ok {
				if _, ok := company[client]; ok {
					delete(company, client)
					close(client.send)
					if len(company) == 0 {
						delete(h.clients, client.companyID)
					}
				}
			}
			h.logger.Info("Staff board client disconnected", "company_id", client.companyID)

		case msg := <-h.broadcast:
			for client := range h.clients[msg.companyID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop it rather than stall the hub.
					delete(h.clients[msg.companyID], client)
					close(client.send)
				}
			}
		}
	}
}

// PublishOrderCreated implements the order service's event publisher.
func (h *Hub) PublishOrderCreated(order *models.Order) {
	h.publish(order, EventOrderCreated)
}

func (h *Hub) PublishStatusChanged(order *models.Order) {
	h.publish(order, EventStatusChanged)
}

func (h *Hub) publish(order *models.Order, eventType string) {
	event := Event{
		Type: eventType,
		Order: models.OrderSummary{
			ID:          order.ID,
			CreatedAt:   order.CreatedAt.Format(time.RFC3339),
			OrderType:   order.OrderType,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
		},
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode board event", "error", err, "order_id", order.ID)
		return
	}

	select {
	case h.broadcast <- companyMessage{companyID: order.CompanyID, payload: payload}:
	default:
		h.logger.Warn("Board event dropped: broadcast queue full", "order_id", order.ID)
	}
}
