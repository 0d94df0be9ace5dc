package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codepad/internal/service"
)

// ExecutionHandler 處理程式碼執行與執行紀錄的請求
type ExecutionHandler struct {
	executionService *service.ExecutionService
	wsManager        *service.WebSocketManager
}

// NewExecutionHandler 創建一個新的 ExecutionHandler 實例
func NewExecutionHandler(executionService *service.ExecutionService, wsManager *service.WebSocketManager) *ExecutionHandler {
	return &ExecutionHandler{
		executionService: executionService,
		wsManager:        wsManager,
	}
}

// ExecuteInput 定義執行請求的結構
type ExecuteInput struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required"`
	Stdin    string `json:"stdin"`
	// 選填：帶上房間與連線 ID 時，結果會同步廣播給房間內其他成員
	RoomID string `json:"room_id"`
	ConnID string `json:"conn_id"`
}

// Execute 執行一段程式碼。
// 沙箱層面的失敗不會讓這個請求失敗，而是以帶有錯誤狀態的結果回傳
func (h *ExecutionHandler) Execute(c *gin.Context) {
	var input ExecuteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	result, err := h.executionService.Execute(c.Request.Context(), userID.(uint), input.Code, input.Language, input.Stdin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "執行請求失敗"})
		return
	}

	// 把輸出同步給房間內的其他成員
	if input.RoomID != "" && input.ConnID != "" {
		h.wsManager.BroadcastExecutionResult(input.RoomID, input.ConnID, result)
	}

	c.JSON(http.StatusOK, result)
}

// ListSubmissions 列出目前用戶的執行紀錄
func (h *ExecutionHandler) ListSubmissions(c *gin.Context) {
	userID, _ := c.Get("userID")

	submissions, err := h.executionService.ListSubmissions(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得執行紀錄"})
		return
	}

	c.JSON(http.StatusOK, submissions)
}
