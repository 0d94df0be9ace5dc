package service

import (
	"errors"

	"github.com/google/uuid"

	"codepad/internal/models"
	"codepad/internal/repository"
)

var ErrShareNotFound = errors.New("分享不存在")

// ShareService 管理可公開存取的程式碼分享連結
type ShareService struct {
	shareRepo repository.ShareRepository
}

func NewShareService(shareRepo repository.ShareRepository) *ShareService {
	return &ShareService{shareRepo: shareRepo}
}

// CreateShare 建立一個分享，回傳帶有公開識別碼的紀錄
func (s *ShareService) CreateShare(userID uint, code, language, title string) (*models.SharedCode, error) {
	share := &models.SharedCode{
		Token:    uuid.NewString(),
		UserID:   userID,
		Code:     code,
		Language: language,
		Title:    title,
	}

	if err := s.shareRepo.Create(share); err != nil {
		return nil, err
	}
	return share, nil
}

// GetShare 以公開識別碼取得分享內容，不需要登入
func (s *ShareService) GetShare(token string) (*models.SharedCode, error) {
	share, err := s.shareRepo.FindByToken(token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrShareNotFound
	}
	return share, err
}

// DeleteShare 刪除分享，必須是建立者本人
func (s *ShareService) DeleteShare(token string, userID uint) error {
	share, err := s.shareRepo.FindByToken(token)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrShareNotFound
	}
	if err != nil {
		return err
	}
	if share.UserID != userID {
		return ErrNotOwner
	}
	return s.shareRepo.Delete(share.ID)
}
