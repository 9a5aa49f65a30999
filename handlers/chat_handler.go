package handlers

import (
	"encoding/json"
	"log"
	"time"

	"trustlist_backend/internal/chatguard"
	"trustlist_backend/internal/ws"
	"trustlist_backend/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ChatHandler struct {
	Hub   *ws.Hub
	DB    *gorm.DB
	Guard *chatguard.Resolver
}

func NewChatHandler(hub *ws.Hub, db *gorm.DB, guard *chatguard.Resolver) *ChatHandler {
	return &ChatHandler{
		Hub:   hub,
		DB:    db,
		Guard: guard,
	}
}

// WebSocketUpgradeMiddleware ensures the client is trying to upgrade to WebSocket
func (h *ChatHandler) WebSocketUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket handler function
func (h *ChatHandler) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			log.Println("Invalid or missing User ID in WebSocket connection")
			c.Close()
			return
		}

		client := &ws.Client{
			Hub:    h.Hub,
			Conn:   c,
			Send:   make(chan []byte, 256),
			UserID: userID,
			DB:     h.DB,
			Guard:  h.Guard,
		}

		client.Hub.Register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

// InitPrivateChatRequest defines payload for starting a chat about a listing
type InitPrivateChatRequest struct {
	TargetUserID uint `json:"target_user_id"`
	ProductID    uint `json:"product_id"`
}

// InitPrivateChat gets an existing private room or creates a new one. New
// rooms snapshot the buyer-seller distance and open with a safety notice
// explaining which contact rules apply at that distance.
func (h *ChatHandler) InitPrivateChat(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	var req InitPrivateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	if userID == req.TargetUserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot chat with yourself"})
	}

	// Find a private room where both users are participants, scoped to the
	// product when one is given.
	var roomID uint
	query := `
		SELECT cr.id
		FROM chat_rooms cr
		JOIN chat_participants cp1 ON cr.id = cp1.chat_room_id
		JOIN chat_participants cp2 ON cr.id = cp2.chat_room_id
		WHERE cr.type = 'private'
		AND cp1.user_id = ?
		AND cp2.user_id = ?
		AND (cr.product_id = ? OR ? = 0)
		LIMIT 1
	`
	if err := h.DB.Raw(query, userID, req.TargetUserID, req.ProductID, req.ProductID).Scan(&roomID).Error; err != nil {
		// roomID stays 0; fall through to creation
	}

	if roomID != 0 {
		// Restore participation if the user had soft-deleted the chat.
		h.DB.Unscoped().Model(&models.ChatParticipant{}).
			Where("chat_room_id = ? AND user_id = ?", roomID, userID).
			Update("deleted_at", nil)

		var room models.ChatRoom
		h.DB.First(&room, roomID)

		return c.JSON(fiber.Map{
			"room_id":         roomID,
			"created":         false,
			"distance_km":     room.DistanceKm,
			"contact_allowed": h.Guard.ContactAllowed(room.DistanceKm),
		})
	}

	// Distance is computed once at room creation; the guard keys off this
	// snapshot for the life of the conversation.
	var me, target models.User
	if err := h.DB.First(&me, userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load user"})
	}
	if err := h.DB.First(&target, req.TargetUserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Target user not found"})
	}
	distance := h.Guard.Distance(&me, &target)

	newRoom := models.ChatRoom{
		Type:       "private",
		DistanceKm: distance,
		ProductID:  req.ProductID,
	}

	tx := h.DB.Begin()
	if err := tx.Create(&newRoom).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create room"})
	}

	participants := []models.ChatParticipant{
		{ChatRoomID: newRoom.ID, UserID: userID},
		{ChatRoomID: newRoom.ID, UserID: req.TargetUserID},
	}
	if err := tx.Create(&participants).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not add participants"})
	}

	notice := models.Message{
		ChatRoomID: newRoom.ID,
		SenderID:   0,
		Content:    h.Guard.SafetyNotice(distance),
		Type:       models.MessageTypeSystem,
	}
	if req.ProductID != 0 {
		var product models.Product
		if err := tx.First(&product, req.ProductID).Error; err == nil {
			if info, err := json.Marshal(fiber.Map{
				"id":    product.ID,
				"title": product.Title,
				"price": product.Price,
				"image": product.ImageURL,
			}); err == nil {
				notice.ProductInfo = string(info)
			}
		}
	}
	if err := tx.Create(&notice).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create room"})
	}

	tx.Commit()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"room_id":         newRoom.ID,
		"created":         true,
		"distance_km":     distance,
		"contact_allowed": h.Guard.ContactAllowed(distance),
	})
}

// GetMyChats returns all chat rooms for the current user with latest message
func (h *ChatHandler) GetMyChats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	type ChatRoomResult struct {
		ID                 uint       `json:"id"`
		Type               string     `json:"type"`
		Name               *string    `json:"name"`
		DistanceKm         float64    `json:"distance_km"`
		ProductID          uint       `json:"product_id"`
		LastMessageContent string     `json:"last_message"`
		LastMessageAt      *time.Time `json:"last_message_at"`
		OtherUserID        uint       `json:"other_user_id"`
		OtherUsername      string     `json:"other_username"`
		OtherImageURL      string     `json:"other_image_url"`
		UnreadCount        int64      `json:"unread_count"`
	}

	var results []ChatRoomResult

	query := `
		SELECT
			cr.id, cr.type, cr.name, cr.distance_km, cr.product_id,
			cr.last_message_content, cr.last_message_at,
			u.id as other_user_id, u.username as other_username, u.image_url as other_image_url,
			(
				SELECT COUNT(*)
				FROM messages m
				WHERE m.chat_room_id = cr.id
				AND m.is_read = false
				AND m.sender_id != ?
				AND m.sender_id != 0
			) as unread_count
		FROM chat_rooms cr
		JOIN chat_participants cp ON cr.id = cp.chat_room_id
		LEFT JOIN chat_participants cp_other ON cr.id = cp_other.chat_room_id AND cp_other.user_id != ?
		LEFT JOIN users u ON cp_other.user_id = u.id
		WHERE cp.user_id = ? AND cp.deleted_at IS NULL
		ORDER BY cr.last_message_at DESC
	`

	if err := h.DB.Raw(query, userID, userID, userID).Scan(&results).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch chats"})
	}

	return c.JSON(fiber.Map{"data": results})
}

// GetChatMessages retrieves messages for a specific chat room. History is
// durable; blocked messages come back flagged rather than filtered out.
func (h *ChatHandler) GetChatMessages(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	roomID, err := c.ParamsInt("roomID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}

	var count int64
	h.DB.Model(&models.ChatParticipant{}).
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count)

	if count == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a member of this chat room"})
	}

	var messages []models.Message
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	if err := h.DB.Preload("Sender").
		Where("chat_room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}

	// Fetching counts as reading for everything the other side sent.
	if err := h.DB.Model(&models.Message{}).
		Where("chat_room_id = ? AND sender_id != ? AND is_read = false", roomID, userID).
		Update("is_read", true).Error; err != nil {
		log.Printf("Failed to mark messages read in room %d: %v", roomID, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// GetRoomStatus returns who is currently online/active in a specific chat
// room, plus whether direct contact is allowed at the room's distance.
func (h *ChatHandler) GetRoomStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	roomID, err := c.ParamsInt("roomID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}

	var count int64
	h.DB.Model(&models.ChatParticipant{}).
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count)

	if count == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a member of this chat room"})
	}

	var room models.ChatRoom
	if err := h.DB.First(&room, roomID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chat room not found"})
	}

	var participants []models.ChatParticipant
	h.DB.Where("chat_room_id = ?", roomID).Find(&participants)

	usersInRoom := h.Hub.GetUsersInRoom(uint(roomID))
	usersInRoomMap := make(map[uint]bool)
	for _, uid := range usersInRoom {
		usersInRoomMap[uid] = true
	}

	type UserRoomStatus struct {
		UserID   uint `json:"user_id"`
		InRoom   bool `json:"in_room"`
		IsOnline bool `json:"is_online"`
	}

	var statuses []UserRoomStatus
	for _, p := range participants {
		statuses = append(statuses, UserRoomStatus{
			UserID:   p.UserID,
			InRoom:   usersInRoomMap[p.UserID],
			IsOnline: h.Hub.IsUserOnline(p.UserID),
		})
	}

	return c.JSON(fiber.Map{
		"room_id":         roomID,
		"distance_km":     room.DistanceKm,
		"contact_allowed": h.Guard.ContactAllowed(room.DistanceKm),
		"statuses":        statuses,
	})
}

// DeleteChat removes the user from the chat conversation (leaves it)
func (h *ChatHandler) DeleteChat(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	roomID, err := c.ParamsInt("roomID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID"})
	}

	var participant models.ChatParticipant
	if err := h.DB.Where("chat_room_id = ? AND user_id = ?", roomID, userID).First(&participant).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chat not found or not a participant"})
	}

	// Soft delete; the room persists for the other participant and the
	// history survives a later re-init.
	if err := h.DB.Delete(&participant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete chat"})
	}

	return c.JSON(fiber.Map{
		"message": "Chat deleted successfully",
	})
}
