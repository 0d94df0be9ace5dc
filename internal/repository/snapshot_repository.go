package repository

import (
	"errors"

	"gorm.io/gorm"

	"codepad/internal/models"
	"codepad/internal/storage"
)

type SnapshotRepository interface {
	Create(snapshot *models.CollabSnapshot) error
	Update(snapshot *models.CollabSnapshot) error
	FindByID(id uint) (*models.CollabSnapshot, error)
	FindByRoomAndUser(roomID string, userID uint) (*models.CollabSnapshot, error)
	FindByUser(userID uint) ([]models.CollabSnapshot, error)
	CountByUser(userID uint) (int64, error)
	DeleteOldestByUser(userID uint) error
	Delete(id uint) error
}

type snapshotRepository struct {
	db *storage.PostgresDB
}

func NewSnapshotRepository(db *storage.PostgresDB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Create 插入一筆新快照。若違反 (room_id, user_id) 唯一索引，
// 回傳 ErrDuplicateKey 讓服務層把這個競爭收斂成成功，而不是對用戶回報錯誤
func (r *snapshotRepository) Create(snapshot *models.CollabSnapshot) error {
	err := r.db.Create(snapshot).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}

func (r *snapshotRepository) Update(snapshot *models.CollabSnapshot) error {
	return r.db.Save(snapshot).Error
}

func (r *snapshotRepository) FindByID(id uint) (*models.CollabSnapshot, error) {
	var snapshot models.CollabSnapshot
	err := r.db.First(&snapshot, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *snapshotRepository) FindByRoomAndUser(roomID string, userID uint) (*models.CollabSnapshot, error) {
	var snapshot models.CollabSnapshot
	err := r.db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FindByUser 查詢用戶的所有快照，最新的在前
func (r *snapshotRepository) FindByUser(userID uint) ([]models.CollabSnapshot, error) {
	var snapshots []models.CollabSnapshot
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&snapshots).Error
	return snapshots, err
}

func (r *snapshotRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CollabSnapshot{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteOldestByUser 刪除該用戶建立時間最早的一筆快照，跨所有房間
func (r *snapshotRepository) DeleteOldestByUser(userID uint) error {
	var oldest models.CollabSnapshot
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").First(&oldest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.db.Delete(&oldest).Error
}

func (r *snapshotRepository) Delete(id uint) error {
	return r.db.Delete(&models.CollabSnapshot{}, id).Error
}
