package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codepad/internal/service"
)

// ShareHandler 處理程式碼分享連結的請求
type ShareHandler struct {
	shareService *service.ShareService
}

// NewShareHandler 創建一個新的 ShareHandler 實例
func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// ShareInput 定義建立分享請求的結構
type ShareInput struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required"`
	Title    string `json:"title"`
}

// Create 建立一個公開分享連結
func (h *ShareHandler) Create(c *gin.Context) {
	var input ShareInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	share, err := h.shareService.CreateShare(userID.(uint), input.Code, input.Language, input.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "建立分享失敗"})
		return
	}

	c.JSON(http.StatusCreated, share)
}

// Get 以公開識別碼取得分享內容，不需要登入
func (h *ShareHandler) Get(c *gin.Context) {
	share, err := h.shareService.GetShare(c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrShareNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "分享不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得分享"})
		return
	}

	c.JSON(http.StatusOK, share)
}

// Delete 刪除分享，只有建立者可以執行
func (h *ShareHandler) Delete(c *gin.Context) {
	userID, _ := c.Get("userID")

	err := h.shareService.DeleteShare(c.Param("token"), userID.(uint))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShareNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "分享不存在"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "沒有權限刪除此分享"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "刪除分享失敗"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "分享已刪除"})
}
