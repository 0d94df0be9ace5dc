package repository

import "errors"

var (
	// ErrDuplicateKey 表示插入時違反唯一索引，
	// 對快照而言代表另一個並發請求已經先建立了同一筆 (room, user) 快照
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound 表示查無資料
	ErrNotFound = errors.New("record not found")
)
