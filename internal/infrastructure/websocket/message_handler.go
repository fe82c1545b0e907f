package websocket

import (
	"encoding/json"
	"time"

	"petadopt/pkg/logger"
)

// WebSocket Message Types
const (
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
	MessageTypeError = "error"
)

// WebSocket Message Structure
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HandleClientMessage answers client messages. State changes flow through the HTTP API,
// so the socket only carries keepalives upstream.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var wsMessage WSMessage

	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		logger.Debug("WebSocket: Failed to unmarshal message from client %s: %v", client.UserID, err)
		m.sendToClient(client, MessageTypeError, map[string]string{"message": "Invalid message format"})
		return
	}

	switch wsMessage.Type {
	case MessageTypePing:
		m.sendToClient(client, MessageTypePong, map[string]string{"status": "alive"})

	default:
		logger.Debug("WebSocket: Unknown message type '%s' from client %s", wsMessage.Type, client.UserID)
		m.sendToClient(client, MessageTypeError, map[string]string{"message": "Unknown message type"})
	}
}

func (m *Manager) sendToClient(client *Client, eventType string, data interface{}) {
	message, err := json.Marshal(WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if _, ok := m.clients[client.UserID][client]; ok {
		m.deliver(client, message)
	}
}
