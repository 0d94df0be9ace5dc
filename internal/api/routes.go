package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"codepad/internal/api/handlers"
	"codepad/internal/middleware"
	"codepad/internal/service"
	"codepad/pkg/config"
)

func SetupRoutes(r *gin.Engine, services *service.Services, redisClient *redis.Client, cfg *config.Config) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	collabHandler := handlers.NewCollaborationHandler(services.Collaboration)
	executionHandler := handlers.NewExecutionHandler(services.Execution, services.WebSocketManager)
	shareHandler := handlers.NewShareHandler(services.Share)
	roomHandler := handlers.NewRoomHandler(services.Registry, services.WebSocketManager)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocketManager)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 公開的程式碼分享連結
		api.GET("/shares/:token", shareHandler.Get)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 即時協作的 WebSocket 連接點
		authorized.GET("/ws", wsHandler.HandleWebSocket)

		// 房間輔助功能
		rooms := authorized.Group("/rooms")
		{
			rooms.POST("", roomHandler.Create)                       // 產生新的房間識別碼
			rooms.GET("/:id/participants", roomHandler.Participants) // 查詢房間參與者
		}
		authorized.GET("/stats", roomHandler.Stats)

		// 協作快照
		collaborations := authorized.Group("/collaborations")
		{
			collaborations.POST("", collabHandler.Upsert)       // 儲存（建立或覆寫）快照
			collaborations.GET("", collabHandler.List)          // 列出快照
			collaborations.GET("/:id", collabHandler.Get)       // 取得單筆快照
			collaborations.DELETE("/:id", collabHandler.Delete) // 刪除快照
		}

		// 程式碼執行，套用速率限制
		authorized.POST("/execute",
			middleware.RateLimit(redisClient, cfg.RateLimit.RequestsPerSecond),
			executionHandler.Execute)
		authorized.GET("/submissions", executionHandler.ListSubmissions)

		// 程式碼分享
		authorized.POST("/shares", shareHandler.Create)
		authorized.DELETE("/shares/:token", shareHandler.Delete)
	}
}
