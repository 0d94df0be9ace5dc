package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"codepad/internal/service"
)

// RoomHandler 處理房間輔助功能的請求。
// 房間本身不做任何持久化或註冊：識別碼由客戶端自行決定，
// 這裡只提供一個產生新識別碼的便利端點與整體統計
type RoomHandler struct {
	registry  *service.RoomRegistry
	wsManager *service.WebSocketManager
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(registry *service.RoomRegistry, wsManager *service.WebSocketManager) *RoomHandler {
	return &RoomHandler{
		registry:  registry,
		wsManager: wsManager,
	}
}

// Create 產生一個新的房間識別碼。
// 伺服器不保留任何狀態，也不強制唯一性；客戶端可以忽略這裡直接自訂識別碼
func (h *RoomHandler) Create(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"room_id": uuid.NewString()})
}

// Participants 回傳房間目前的參與者列表，房間不存在時回傳空列表
func (h *RoomHandler) Participants(c *gin.Context) {
	participants := h.registry.Participants(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"participants": participants,
		"count":        len(participants),
	})
}

// Stats 回傳即時協作的整體統計
func (h *RoomHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_rooms":       h.registry.RoomCount(),
		"joined_connections": h.registry.ConnCount(),
		"total_connections":  h.wsManager.ClientCount(),
	})
}
