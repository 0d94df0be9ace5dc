package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"codepad/internal/api"
	"codepad/internal/models"
	"codepad/internal/repository"
	"codepad/internal/service"
	"codepad/internal/storage"
	"codepad/internal/utils"
	"codepad/pkg/config"
)

func main() {
	// 載入應用程式配置
	// 從配置文件中讀取設置，如數據庫連接信息和服務器地址等
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// 初始化 JWT 簽章設定
	utils.InitJWT(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// 初始化資料庫連接
	// 使用配置中的信息建立到 PostgreSQL 數據庫的連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 根據定義的模型自動創建或更新數據庫表結構
	if err := db.AutoMigrate(&models.User{}, &models.CollabSnapshot{}, &models.Submission{}, &models.SharedCode{}); err != nil {
		logrus.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 Redis 連接，用於速率限制與執行結果快取
	redisClient, err := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logrus.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// 初始化 repositories
	repos := repository.NewRepositories(db)

	// 初始化 services
	services := service.NewServices(repos, redisClient, cfg)

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services, redisClient, cfg)

	// 啟動伺服器
	// 使用配置中指定的地址啟動 HTTP 服務器
	logrus.Infof("codepad server starting on %s", cfg.Server.Address)
	if err := r.Run(cfg.Server.Address); err != nil {
		logrus.Fatalf("Failed to run server: %v", err)
	}
}
