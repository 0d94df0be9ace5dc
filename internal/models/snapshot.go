package models

import (
	"time"

	"gorm.io/gorm"
)

// CollabSnapshot 表示某個用戶對某個協作房間最後一次儲存的程式碼快照。
// 同一個 (room_id, user_id) 最多只有一筆，後續儲存會就地覆寫。
// 唯一索引的目的是讓並發插入的競爭可以被偵測到，
// 正確性仍由「先查詢、再更新或插入」的流程保證，而不是依賴這個約束。
type CollabSnapshot struct {
	gorm.Model
	RoomID     string    `gorm:"uniqueIndex:idx_room_user;not null" json:"room_id"`
	UserID     uint      `gorm:"uniqueIndex:idx_room_user;not null;index" json:"user_id"`
	Code       string    `gorm:"type:text" json:"code"`
	Language   string    `gorm:"type:varchar(50)" json:"language"`
	Title      string    `gorm:"type:varchar(255)" json:"title"`       // 文件顯示名稱
	EditorName string    `gorm:"type:varchar(255)" json:"editor_name"` // 儲存者的顯示名稱，純文字而非外鍵
	SavedAt    time.Time `json:"saved_at"`                             // 客戶端提供的儲存時間
}
