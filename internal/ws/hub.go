package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains the set of active clients and broadcasts messages to the
// clients.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Inbound messages from the clients.
	Broadcast chan []byte

	// Map to quickly find clients by UserID (critical for private messaging)
	userClients map[uint][]*Client

	// Mutex to protect the userClients map
	mutex sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:   make(chan []byte),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint][]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.registerUser(client)
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.unregisterUser(client)
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// registerUser adds a client to the per-user map and announces presence.
func (h *Hub) registerUser(client *Client) {
	h.mutex.Lock()
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	count := len(h.userClients[client.UserID])

	onlineUserIDs := make([]uint, 0, len(h.userClients))
	for userID := range h.userClients {
		onlineUserIDs = append(onlineUserIDs, userID)
	}
	h.mutex.Unlock()

	log.Printf("User %d connected. Total connections for user: %d", client.UserID, count)

	statusJSON, _ := json.Marshal(map[string]interface{}{
		"type":      "user_status",
		"user_id":   client.UserID,
		"is_online": true,
	})
	go func() {
		h.Broadcast <- statusJSON
	}()

	// Give the new client the current online list so presence is symmetric
	if len(onlineUserIDs) > 0 {
		initialStatusJSON, _ := json.Marshal(map[string]interface{}{
			"type":     "online_users_list",
			"user_ids": onlineUserIDs,
		})
		go func() {
			client.Send <- initialStatusJSON
		}()
	}
}

// unregisterUser removes a client from the per-user map.
func (h *Hub) unregisterUser(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	userConns := h.userClients[client.UserID]
	for i, conn := range userConns {
		if conn == client {
			h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
			break
		}
	}

	count := len(h.userClients[client.UserID])
	if count == 0 {
		delete(h.userClients, client.UserID)

		statusJSON, _ := json.Marshal(map[string]interface{}{
			"type":      "user_status",
			"user_id":   client.UserID,
			"is_online": false,
		})
		go func() {
			h.Broadcast <- statusJSON
		}()

		log.Printf("User %d disconnected (Offline)", client.UserID)
	} else {
		log.Printf("User %d disconnected (Still has %d connections)", client.UserID, count)
	}
}

// SendToUser sends a message to a specific user (all their active connections)
func (h *Hub) SendToUser(userID uint, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if clients, ok := h.userClients[userID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// GetUsersInRoom returns all user IDs currently active in a specific room
func (h *Hub) GetUsersInRoom(roomID uint) []uint {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var usersInRoom []uint
	seen := make(map[uint]bool)

	for userID, clients := range h.userClients {
		for _, client := range clients {
			client.mu.Lock()
			activeRoom := client.ActiveRoomID
			client.mu.Unlock()

			if activeRoom == roomID && !seen[userID] {
				usersInRoom = append(usersInRoom, userID)
				seen[userID] = true
				break
			}
		}
	}
	return usersInRoom
}

// IsUserOnline checks if a user has any active WebSocket connection
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, ok := h.userClients[userID]
	return ok && len(clients) > 0
}
