package service

import (
	"sync"
	"time"

	"codepad/internal/models"
)

// Participant 代表一個連線在房間內的成員資格
type Participant struct {
	ConnID      string
	DisplayName string
	JoinedAt    time.Time
}

// RoomRegistry 追蹤所有活躍房間的即時參與者。
// 狀態只存在於記憶體中，生命週期跟隨伺服器行程，重啟後不保留。
// 房間識別碼由客戶端提供，不做驗證也不保證唯一：
// 兩個不相干的用戶使用同一個識別碼會被合併進同一個房間，
// 這是「分享代碼加入我的房間」流程依賴的既有行為，不是要修掉的缺陷。
type RoomRegistry struct {
	rooms map[string]map[string]*Participant // roomID -> connID -> participant
	conns map[string]string                  // connID -> roomID，保證一條連線同時只屬於一個房間
	mu    sync.RWMutex                       // 所有變動都必須持有寫鎖，維持序列化執行的一致性模型
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]map[string]*Participant),
		conns: make(map[string]string),
	}
}

// Join 把連線加入指定房間並回傳更新後的參與者列表。
// 若連線原本在別的房間，會先從舊房間移除；
// 舊房間因此清空時整個條目會被刪除，避免房間數量無上限成長。
// 第二個回傳值是被隱式離開的舊房間 ID，沒有則為空字串。
func (r *RoomRegistry) Join(connID, roomID, displayName string) ([]models.ParticipantInfo, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := ""
	if prevRoom, ok := r.conns[connID]; ok && prevRoom != roomID {
		r.removeLocked(connID, prevRoom)
		previous = prevRoom
	}

	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]*Participant)
	}
	r.rooms[roomID][connID] = &Participant{
		ConnID:      connID,
		DisplayName: displayName,
		JoinedAt:    time.Now(),
	}
	r.conns[connID] = roomID

	return r.participantsLocked(roomID), previous
}

// Leave 把連線從房間移除，回傳剩餘的參與者列表；
// 第二個回傳值表示房間是否因此被刪除
func (r *RoomRegistry) Leave(connID, roomID string) ([]models.ParticipantInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(connID, roomID)

	if _, ok := r.rooms[roomID]; !ok {
		return nil, true
	}
	return r.participantsLocked(roomID), false
}

// Participants 回傳房間目前的參與者列表，房間不存在時回傳空列表而非錯誤
func (r *RoomRegistry) Participants(roomID string) []models.ParticipantInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.participantsLocked(roomID)
}

// RoomOf 回傳連線目前所在的房間 ID，不在任何房間時回傳空字串
func (r *RoomRegistry) RoomOf(connID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[connID]
}

// InRoom 回報連線是否為指定房間的成員
func (r *RoomRegistry) InRoom(connID, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][connID]
	return ok
}

// RoomCount 回傳活躍房間數量
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// ConnCount 回傳已加入房間的連線數量
func (r *RoomRegistry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// removeLocked 移除成員並在房間清空時刪除房間條目，呼叫者必須持有寫鎖
func (r *RoomRegistry) removeLocked(connID, roomID string) {
	if participants, ok := r.rooms[roomID]; ok {
		if _, ok := participants[connID]; ok {
			delete(participants, connID)
			if len(participants) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	if r.conns[connID] == roomID {
		delete(r.conns, connID)
	}
}

// participantsLocked 組出參與者列表，呼叫者必須持有鎖
func (r *RoomRegistry) participantsLocked(roomID string) []models.ParticipantInfo {
	participants := make([]models.ParticipantInfo, 0, len(r.rooms[roomID]))
	for _, p := range r.rooms[roomID] {
		participants = append(participants, models.ParticipantInfo{
			ConnID:      p.ConnID,
			DisplayName: p.DisplayName,
		})
	}
	return participants
}
