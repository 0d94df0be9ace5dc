package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"codepad/internal/models"
	"codepad/internal/repository"
	"codepad/internal/sandbox"
)

// ExecutionService 把執行請求轉發給遠端沙箱並記錄每一次的執行結果。
// 沙箱的任何失敗（逾時、網路錯誤、非預期回應）都會被轉換成結果值，
// 用戶看到的是輸出面板裡的錯誤文字，而不是一個失敗的請求。
type ExecutionService struct {
	client         *sandbox.Client
	submissionRepo repository.SubmissionRepository
	redis          *redis.Client
	cacheTTL       time.Duration
}

func NewExecutionService(client *sandbox.Client, submissionRepo repository.SubmissionRepository, redisClient *redis.Client, cacheTTL time.Duration) *ExecutionService {
	return &ExecutionService{
		client:         client,
		submissionRepo: submissionRepo,
		redis:          redisClient,
		cacheTTL:       cacheTTL,
	}
}

// Execute 執行一段程式碼並回傳結果。
// 每次執行（包括失敗的）都會留下一筆 Submission 紀錄；
// 短時間內完全相同的 (code, language, stdin) 會直接回傳快取的結果，不重複打沙箱
func (s *ExecutionService) Execute(ctx context.Context, userID uint, code, language, stdin string) (*models.ExecutionResult, error) {
	cacheKey := resultCacheKey(code, language, stdin)
	if cached := s.lookupCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	result, err := s.client.Execute(ctx, code, language, stdin)
	if err != nil {
		// 傳輸層的失敗轉換成結果值，不往上拋
		result = &models.ExecutionResult{
			Stdout: "執行失敗: " + err.Error(),
			Status: models.StatusError,
		}
		if errors.Is(err, context.DeadlineExceeded) {
			result.Status = models.StatusTimeout
			result.Stdout = "執行超時"
		}
		logrus.WithField("user_id", userID).Warnf("sandbox call failed: %v", err)
	}

	// 無論成功或失敗都記錄這次執行
	submission := &models.Submission{
		UserID:          userID,
		Code:            code,
		Language:        language,
		Stdin:           stdin,
		Stdout:          result.Stdout,
		Status:          result.Status,
		ExecutionTimeMs: result.ExecutionTimeMs,
	}
	if err := s.submissionRepo.Create(submission); err != nil {
		logrus.Errorf("failed to record submission: %v", err)
	}

	s.storeCache(ctx, cacheKey, result)
	return result, nil
}

// ListSubmissions 列出用戶的執行紀錄，最新的在前
func (s *ExecutionService) ListSubmissions(userID uint) ([]models.Submission, error) {
	return s.submissionRepo.FindByUser(userID)
}

func (s *ExecutionService) lookupCache(ctx context.Context, key string) *models.ExecutionResult {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var result models.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

func (s *ExecutionService) storeCache(ctx context.Context, key string, result *models.ExecutionResult) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		logrus.Warnf("failed to cache execution result: %v", err)
	}
}

func resultCacheKey(code, language, stdin string) string {
	h := sha256.New()
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(code))
	h.Write([]byte{0})
	h.Write([]byte(stdin))
	return "exec:" + hex.EncodeToString(h.Sum(nil))
}
