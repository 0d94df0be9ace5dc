package repository

import (
	"errors"

	"gorm.io/gorm"

	"codepad/internal/models"
	"codepad/internal/storage"
)

type ShareRepository interface {
	Create(share *models.SharedCode) error
	FindByToken(token string) (*models.SharedCode, error)
	Delete(id uint) error
}

type shareRepository struct {
	db *storage.PostgresDB
}

func NewShareRepository(db *storage.PostgresDB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(share *models.SharedCode) error {
	return r.db.Create(share).Error
}

func (r *shareRepository) FindByToken(token string) (*models.SharedCode, error) {
	var share models.SharedCode
	err := r.db.Where("token = ?", token).First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *shareRepository) Delete(id uint) error {
	return r.db.Delete(&models.SharedCode{}, id).Error
}
