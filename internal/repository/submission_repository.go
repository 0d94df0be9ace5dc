package repository

import (
	"codepad/internal/models"
	"codepad/internal/storage"
)

type SubmissionRepository interface {
	Create(submission *models.Submission) error
	FindByUser(userID uint) ([]models.Submission, error)
}

type submissionRepository struct {
	db *storage.PostgresDB
}

func NewSubmissionRepository(db *storage.PostgresDB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(submission *models.Submission) error {
	return r.db.Create(submission).Error
}

// FindByUser 查詢用戶的執行紀錄，最新的在前
func (r *submissionRepository) FindByUser(userID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&submissions).Error
	return submissions, err
}
