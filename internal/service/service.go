package service

import (
	"time"

	"github.com/go-redis/redis/v8"

	"codepad/internal/repository"
	"codepad/internal/sandbox"
	"codepad/pkg/config"
)

type Services struct {
	User             *UserService
	Collaboration    *CollaborationService
	Execution        *ExecutionService
	Share            *ShareService
	Registry         *RoomRegistry
	WebSocketManager *WebSocketManager
}

func NewServices(repos *repository.Repositories, redisClient *redis.Client, cfg *config.Config) *Services {
	registry := NewRoomRegistry()

	sandboxClient := sandbox.NewClient(
		cfg.Sandbox.URL,
		time.Duration(cfg.Sandbox.TimeoutSeconds)*time.Second,
	)

	return &Services{
		User:             NewUserService(repos.User),
		Collaboration:    NewCollaborationService(repos.Snapshot, cfg.Collab.SnapshotLimit),
		Execution:        NewExecutionService(sandboxClient, repos.Submission, redisClient, time.Duration(cfg.Collab.CacheTTLSeconds)*time.Second),
		Share:            NewShareService(repos.Share),
		Registry:         registry,
		WebSocketManager: NewWebSocketManager(registry),
	}
}
