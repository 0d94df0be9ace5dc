package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimit 以客戶端 IP 為單位限制每秒請求次數
func RateLimit(redisClient *redis.Client, maxRequests int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()
		count, _ := redisClient.Get(c.Request.Context(), key).Int()
		if count >= maxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "請求過於頻繁，請稍後再試"})
			c.Abort()
			return
		}
		redisClient.Incr(c.Request.Context(), key)
		redisClient.Expire(c.Request.Context(), key, time.Second)
		c.Next()
	}
}
