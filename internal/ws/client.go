package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"trustlist_backend/internal/chatguard"
	"trustlist_backend/models"

	"github.com/gofiber/contrib/websocket"
	"gorm.io/gorm"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096 // 4KB
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// User ID derived from authentication
	UserID uint

	// Database connection for message persistence
	DB *gorm.DB

	// Guard applies the proximity gate to outgoing chat content
	Guard *chatguard.Resolver

	// Active Room Tracking
	ActiveRoomID uint
	mu           sync.Mutex
}

// WSMessage defines the structure of messages sent over WebSocket
type WSMessage struct {
	Type       string          `json:"type"` // 'chat', 'read', 'join_room', 'leave_room'
	ChatRoomID uint            `json:"chat_room_id,omitempty"`
	Content    string          `json:"content,omitempty"`
	MessageID  uint            `json:"message_id,omitempty"` // used for 'read' receipts
	Product    json.RawMessage `json:"product,omitempty"`    // product snapshot
}

// ReadPump pumps messages from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued chat messages to the current websocket message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var wsMsg WSMessage
	if err := json.Unmarshal(message, &wsMsg); err != nil {
		log.Printf("Error unmarshalling message: %v", err)
		return
	}

	switch wsMsg.Type {
	case "chat":
		c.processChatMessage(&wsMsg)
	case "read":
		c.processReadReceipt(&wsMsg)
	case "join_room":
		c.mu.Lock()
		c.ActiveRoomID = wsMsg.ChatRoomID
		c.mu.Unlock()
		log.Printf("User %d joined room %d", c.UserID, wsMsg.ChatRoomID)
	case "leave_room":
		c.mu.Lock()
		c.ActiveRoomID = 0
		c.mu.Unlock()
	}
}

// processChatMessage runs the proximity guard over outgoing content, then
// persists and delivers. A blocked message is recorded with the blocked
// flag and a platform warning is appended right after it; both reach every
// participant, nothing is silently dropped.
func (c *Client) processChatMessage(wsMsg *WSMessage) {
	var room models.ChatRoom
	if err := c.DB.Preload("Participants").First(&room, wsMsg.ChatRoomID).Error; err != nil {
		log.Printf("Error finding chat room: %v", err)
		return
	}

	isParticipant := false
	var recipientID uint
	for _, p := range room.Participants {
		if p.UserID == c.UserID {
			isParticipant = true
		} else {
			recipientID = p.UserID
		}
	}
	if !isParticipant {
		log.Printf("User %d is not a participant of room %d", c.UserID, room.ID)
		return
	}

	var sender models.User
	if err := c.DB.First(&sender, c.UserID).Error; err != nil {
		log.Printf("Error fetching sender info: %v", err)
	}

	decision := c.Guard.Check(wsMsg.Content, room.DistanceKm)

	msg := models.Message{
		ChatRoomID:  room.ID,
		SenderID:    c.UserID,
		Content:     wsMsg.Content,
		Type:        models.MessageTypeText,
		Blocked:     decision == chatguard.Block,
		ProductInfo: string(wsMsg.Product),
		Sender:      sender,
	}
	if err := c.DB.Omit("Sender").Create(&msg).Error; err != nil {
		log.Printf("Error saving message: %v", err)
		return
	}

	c.deliver(&msg, recipientID)

	if msg.Blocked {
		warning := models.Message{
			ChatRoomID: room.ID,
			Content:    c.Guard.BlockedNotice(),
			Type:       models.MessageTypeWarning,
		}
		if err := c.DB.Omit("Sender").Create(&warning).Error; err != nil {
			log.Printf("Error saving warning message: %v", err)
		} else {
			c.deliver(&warning, recipientID)
		}
		return
	}

	// Only allowed messages update the chat list preview
	if err := c.DB.Model(&models.ChatRoom{}).Where("id = ?", room.ID).Updates(map[string]interface{}{
		"last_message_content": wsMsg.Content,
		"last_message_at":      time.Now(),
	}).Error; err != nil {
		log.Printf("Error updating chat room metadata: %v", err)
	}
}

// deliver echoes a stored message to the sender and pushes it to the
// recipient's active connections.
func (c *Client) deliver(msg *models.Message, recipientID uint) {
	responseJSON, _ := json.Marshal(map[string]interface{}{
		"type":         "chat",
		"message":      msg,
		"sender_id":    msg.SenderID,
		"chat_room_id": msg.ChatRoomID,
	})

	c.Send <- responseJSON
	if recipientID != 0 {
		c.Hub.SendToUser(recipientID, responseJSON)
	}
}

func (c *Client) processReadReceipt(wsMsg *WSMessage) {
	if wsMsg.MessageID == 0 {
		return
	}

	var msg models.Message
	if err := c.DB.First(&msg, wsMsg.MessageID).Error; err != nil {
		return
	}
	if msg.SenderID == c.UserID {
		return
	}

	if err := c.DB.Model(&msg).Update("is_read", true).Error; err != nil {
		log.Printf("Error marking message read: %v", err)
		return
	}

	receiptJSON, _ := json.Marshal(map[string]interface{}{
		"type":         "read_receipt",
		"message_id":   msg.ID,
		"chat_room_id": msg.ChatRoomID,
		"read_by":      c.UserID,
	})
	c.Hub.SendToUser(msg.SenderID, receiptJSON)
}
