package models

import (
	"encoding/json"
	"time"
)

// EventType 定義即時事件的種類
type EventType string

const (
	// 客戶端發起的事件
	EventJoinRoom    EventType = "join_room"
	EventLeaveRoom   EventType = "leave_room"
	EventCodeChange  EventType = "code_change"
	EventCursorMove  EventType = "cursor_change"
	EventChatMessage EventType = "chat_message"
	EventIOState     EventType = "io_state" // 輸入/輸出面板的同步

	// 伺服器發起的事件
	EventConnected  EventType = "connected"
	EventRoomUsers  EventType = "room_users"
	EventUserJoined EventType = "participant_joined"
	EventUserLeft   EventType = "participant_left"
	EventError      EventType = "error"
)

// Event 是 WebSocket 連線上雙向傳遞的統一事件結構。
// Data 依 Type 不同對應到下方的 payload 結構。
type Event struct {
	Type        EventType       `json:"type"`
	RoomID      string          `json:"room_id,omitempty"`
	SenderID    string          `json:"sender_id,omitempty"` // 發送者的連線 ID，由伺服器填入
	DisplayName string          `json:"display_name,omitempty"`
	Timestamp   time.Time       `json:"timestamp,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// JoinPayload join_room 事件的內容
type JoinPayload struct {
	DisplayName string `json:"display_name"`
}

// CodePayload code_change 事件的內容
type CodePayload struct {
	Code string `json:"code"`
}

// CursorPayload cursor_change 事件的內容
type CursorPayload struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ChatPayload chat_message 事件的內容
type ChatPayload struct {
	Text string `json:"text"`
}

// IOPayload io_state 事件的內容，kind 為 "input" 或 "output"
type IOPayload struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// ParticipantInfo 是廣播給房間成員的參與者資訊
type ParticipantInfo struct {
	ConnID      string `json:"conn_id"`
	DisplayName string `json:"display_name"`
}

// RoomUsersPayload room_users 事件的內容
type RoomUsersPayload struct {
	Participants []ParticipantInfo `json:"participants"`
	Count        int               `json:"count"`
}

// ErrorPayload error 事件的內容
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewEvent 建立一個帶有序列化內容的事件，payload 無法序列化時回傳錯誤
func NewEvent(eventType EventType, roomID string, payload interface{}) (*Event, error) {
	event := &Event{
		Type:      eventType,
		RoomID:    roomID,
		Timestamp: time.Now(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Data = data
	}

	return event, nil
}
