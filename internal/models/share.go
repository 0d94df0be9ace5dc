package models

import (
	"gorm.io/gorm"
)

// SharedCode 表示一個可透過公開連結存取的程式碼分享
type SharedCode struct {
	gorm.Model
	Token    string `gorm:"uniqueIndex;not null" json:"token"` // 公開連結中的識別碼
	UserID   uint   `gorm:"not null" json:"user_id"`
	Code     string `gorm:"type:text" json:"code"`
	Language string `gorm:"type:varchar(50)" json:"language"`
	Title    string `gorm:"type:varchar(255)" json:"title"`
}
