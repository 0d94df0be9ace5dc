package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepad/internal/models"
	"codepad/internal/repository"
)

type fakeShareRepo struct {
	shares map[uint]*models.SharedCode
	nextID uint
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{shares: make(map[uint]*models.SharedCode), nextID: 1}
}

func (f *fakeShareRepo) Create(share *models.SharedCode) error {
	share.ID = f.nextID
	f.nextID++
	stored := *share
	f.shares[share.ID] = &stored
	return nil
}

func (f *fakeShareRepo) FindByToken(token string) (*models.SharedCode, error) {
	for _, s := range f.shares {
		if s.Token == token {
			out := *s
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeShareRepo) Delete(id uint) error {
	delete(f.shares, id)
	return nil
}

func TestShareCreateAndGet(t *testing.T) {
	svc := NewShareService(newFakeShareRepo())

	share, err := svc.CreateShare(7, "x=1", "javascript", "demo")
	require.NoError(t, err)
	require.NotEmpty(t, share.Token)

	got, err := svc.GetShare(share.Token)
	require.NoError(t, err)
	assert.Equal(t, "x=1", got.Code)
	assert.EqualValues(t, 7, got.UserID)

	_, err = svc.GetShare("missing")
	assert.ErrorIs(t, err, ErrShareNotFound)
}

func TestShareDeleteOwnership(t *testing.T) {
	repo := newFakeShareRepo()
	svc := NewShareService(repo)

	share, err := svc.CreateShare(7, "x=1", "javascript", "demo")
	require.NoError(t, err)

	// 非建立者不能刪除
	assert.ErrorIs(t, svc.DeleteShare(share.Token, 8), ErrNotOwner)
	_, err = svc.GetShare(share.Token)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteShare(share.Token, 7))
	_, err = svc.GetShare(share.Token)
	assert.ErrorIs(t, err, ErrShareNotFound)
}
