package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Sandbox   SandboxConfig
	Collab    CollabConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// SandboxConfig 遠端程式碼執行沙箱的設定
type SandboxConfig struct {
	URL            string
	TimeoutSeconds int
}

// CollabConfig 協作快照相關設定
type CollabConfig struct {
	// 每個用戶最多保留的快照數量，超過時淘汰最舊的一筆
	SnapshotLimit int
	// 執行結果快取的存活時間（秒）
	CacheTTLSeconds int
}

type RateLimitConfig struct {
	// 每秒允許的請求數
	RequestsPerSecond int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	// 提供合理的預設值，讓設定檔只需要寫有差異的部分
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("jwt.expirehours", 240)
	viper.SetDefault("sandbox.timeoutseconds", 15)
	viper.SetDefault("collab.snapshotlimit", 50)
	viper.SetDefault("collab.cachettlseconds", 10)
	viper.SetDefault("ratelimit.requestspersecond", 10)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
