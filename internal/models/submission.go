package models

import (
	"gorm.io/gorm"
)

// Submission 表示一次程式碼執行的紀錄
type Submission struct {
	gorm.Model
	UserID          uint             `json:"user_id"`
	Code            string           `gorm:"type:text" json:"code"`
	Language        string           `gorm:"type:varchar(50)" json:"language"`
	Stdin           string           `gorm:"type:text" json:"stdin"`
	Stdout          string           `gorm:"type:text" json:"stdout"`
	Status          SubmissionStatus `gorm:"type:varchar(20)" json:"status"`
	ExecutionTimeMs int              `json:"execution_time_ms"`
}

// SubmissionStatus 定義執行結果狀態的類型
type SubmissionStatus string

const (
	StatusPending      SubmissionStatus = "pending"
	StatusCompleted    SubmissionStatus = "completed"
	StatusError        SubmissionStatus = "error"
	StatusRuntimeError SubmissionStatus = "runtime_error"
	StatusTimeout      SubmissionStatus = "timeout"
)

// ExecutionResult 是回傳給用戶以及廣播給房間的執行結果，
// 沙箱的失敗也會被轉換成這個結構，而不是對外拋出錯誤
type ExecutionResult struct {
	Stdout          string           `json:"stdout"`
	Status          SubmissionStatus `json:"status"`
	ExecutionTimeMs int              `json:"execution_time_ms"`
}
