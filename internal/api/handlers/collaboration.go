package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"codepad/internal/service"
)

// CollaborationHandler 處理協作快照的儲存與管理請求
type CollaborationHandler struct {
	collabService *service.CollaborationService
}

// NewCollaborationHandler 創建一個新的 CollaborationHandler 實例
func NewCollaborationHandler(collabService *service.CollaborationService) *CollaborationHandler {
	return &CollaborationHandler{collabService: collabService}
}

// UpsertInput 定義儲存快照請求的結構。
// Participants 只是客戶端回報的當下名單，不會被儲存
type UpsertInput struct {
	RoomID       string    `json:"room_id" binding:"required"`
	Code         string    `json:"code"`
	Language     string    `json:"language" binding:"required"`
	Title        string    `json:"title"`
	EditorName   string    `json:"editor_name"`
	Participants []string  `json:"participants"`
	Timestamp    time.Time `json:"timestamp"`
}

// Upsert 處理儲存房間快照的請求。
// 同一個用戶對同一個房間重複儲存會就地覆寫；
// 與其他請求撞上的並發插入一律回報成功，客戶端的重試依賴這個行為
func (h *CollaborationHandler) Upsert(c *gin.Context) {
	var input UpsertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	if input.Timestamp.IsZero() {
		input.Timestamp = time.Now()
	}

	snapshot, outcome, err := h.collabService.UpsertSnapshot(service.UpsertInput{
		RoomID:     input.RoomID,
		UserID:     userID.(uint),
		Code:       input.Code,
		Language:   input.Language,
		Title:      input.Title,
		EditorName: input.EditorName,
		SavedAt:    input.Timestamp,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "儲存快照失敗"})
		return
	}

	status := http.StatusOK
	if outcome == service.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"snapshot": snapshot, "outcome": outcome})
}

// List 列出目前用戶的所有快照
func (h *CollaborationHandler) List(c *gin.Context) {
	userID, _ := c.Get("userID")

	snapshots, err := h.collabService.ListSnapshots(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得快照列表"})
		return
	}

	c.JSON(http.StatusOK, snapshots)
}

// Get 取得單筆快照
func (h *CollaborationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的快照 ID"})
		return
	}

	userID, _ := c.Get("userID")

	snapshot, err := h.collabService.GetSnapshot(uint(id), userID.(uint))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Delete 刪除快照，只有擁有者可以執行
func (h *CollaborationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的快照 ID"})
		return
	}

	userID, _ := c.Get("userID")

	if err := h.collabService.DeleteSnapshot(uint(id), userID.(uint)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "快照已刪除"})
}

// writeError 把服務層錯誤對應到 HTTP 狀態碼
func (h *CollaborationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "快照不存在"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "沒有權限操作此快照"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "操作失敗"})
	}
}
