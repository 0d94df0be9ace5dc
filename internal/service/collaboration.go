package service

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"codepad/internal/models"
	"codepad/internal/repository"
)

var (
	ErrSnapshotNotFound = errors.New("快照不存在")
	ErrNotOwner         = errors.New("沒有權限操作此快照")
)

// UpsertOutcome 標記一次快照儲存實際走的路徑，
// 讓「建立、更新、撞上並發插入後收斂成功」三種結果對呼叫者保持明確可測，
// 而不是依賴底層資料庫的錯誤碼
type UpsertOutcome string

const (
	OutcomeCreated   UpsertOutcome = "created"
	OutcomeUpdated   UpsertOutcome = "updated"
	OutcomeDuplicate UpsertOutcome = "duplicate"
)

// UpsertInput 是儲存協作快照所需的資料
type UpsertInput struct {
	RoomID     string
	UserID     uint
	Code       string
	Language   string
	Title      string
	EditorName string
	SavedAt    time.Time
}

// CollaborationService 負責協作快照的持久化：
// 明確的用戶儲存動作會把房間當下的程式碼寫成一筆以 (room, user) 為鍵的快照
type CollaborationService struct {
	snapshotRepo  repository.SnapshotRepository
	snapshotLimit int
}

func NewCollaborationService(snapshotRepo repository.SnapshotRepository, snapshotLimit int) *CollaborationService {
	return &CollaborationService{
		snapshotRepo:  snapshotRepo,
		snapshotLimit: snapshotLimit,
	}
}

// UpsertSnapshot 建立或就地覆寫 (room, user) 的快照。
//
// 先查詢再決定插入或更新的兩步流程跨越資料庫往返，對並發呼叫者並不是原子的：
// 兩個請求可能同時查不到既有快照而都嘗試插入。後插入的一方會撞到唯一索引，
// 這種重複鍵必須被視為良性競爭收斂成成功——對呼叫者的契約是
// 「這個房間現在存在一筆有效快照」，客戶端的重試邏輯依賴這個非嚴格冪等保證。
// 撞鍵的一方會改走更新路徑，讓它的資料以最後寫入者的身份落地。
func (s *CollaborationService) UpsertSnapshot(input UpsertInput) (*models.CollabSnapshot, UpsertOutcome, error) {
	existing, err := s.snapshotRepo.FindByRoomAndUser(input.RoomID, input.UserID)
	if err == nil {
		// 已有快照：就地覆寫。重複以相同參數呼叫會收斂到同一個儲存狀態
		s.apply(existing, input)
		if err := s.snapshotRepo.Update(existing); err != nil {
			return nil, "", err
		}
		return existing, OutcomeUpdated, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	// 新房間的第一次儲存：先檢查保留上限。
	// 淘汰對象是該用戶跨所有房間中建立時間最早的一筆，
	// 長期活躍在單一房間的用戶可能因此失去其他舊房間的快照，這是刻意的容量管理
	count, err := s.snapshotRepo.CountByUser(input.UserID)
	if err != nil {
		return nil, "", err
	}
	if count >= int64(s.snapshotLimit) {
		if err := s.snapshotRepo.DeleteOldestByUser(input.UserID); err != nil {
			return nil, "", err
		}
		logrus.WithFields(logrus.Fields{
			"user_id": input.UserID,
			"limit":   s.snapshotLimit,
		}).Info("snapshot limit reached, evicted oldest")
	}

	snapshot := &models.CollabSnapshot{
		RoomID: input.RoomID,
		UserID: input.UserID,
	}
	s.apply(snapshot, input)

	err = s.snapshotRepo.Create(snapshot)
	if errors.Is(err, repository.ErrDuplicateKey) {
		// 另一個並發請求已經先建立了這筆快照。
		// 收斂成成功：改成更新既有的那一筆，讓本次呼叫的資料獲勝
		existing, findErr := s.snapshotRepo.FindByRoomAndUser(input.RoomID, input.UserID)
		if findErr != nil {
			return nil, "", findErr
		}
		s.apply(existing, input)
		if err := s.snapshotRepo.Update(existing); err != nil {
			return nil, "", err
		}
		return existing, OutcomeDuplicate, nil
	}
	if err != nil {
		return nil, "", err
	}

	return snapshot, OutcomeCreated, nil
}

// GetSnapshot 取得單筆快照，只有擁有者可以讀取
func (s *CollaborationService) GetSnapshot(id, userID uint) (*models.CollabSnapshot, error) {
	snapshot, err := s.snapshotRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	if snapshot.UserID != userID {
		return nil, ErrNotOwner
	}
	return snapshot, nil
}

// ListSnapshots 列出用戶的所有快照，最新的在前
func (s *CollaborationService) ListSnapshots(userID uint) ([]models.CollabSnapshot, error) {
	return s.snapshotRepo.FindByUser(userID)
}

// DeleteSnapshot 刪除快照。必須先確認請求者是擁有者，
// 不是擁有者時直接拒絕，絕不靜默忽略或動到別人的資料
func (s *CollaborationService) DeleteSnapshot(id, userID uint) error {
	snapshot, err := s.snapshotRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSnapshotNotFound
	}
	if err != nil {
		return err
	}
	if snapshot.UserID != userID {
		return ErrNotOwner
	}
	return s.snapshotRepo.Delete(snapshot.ID)
}

// apply 把輸入覆寫到快照欄位上
func (s *CollaborationService) apply(snapshot *models.CollabSnapshot, input UpsertInput) {
	snapshot.Code = input.Code
	snapshot.Language = input.Language
	snapshot.Title = input.Title
	snapshot.EditorName = input.EditorName
	snapshot.SavedAt = input.SavedAt
}
