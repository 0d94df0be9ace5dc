package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepad/internal/models"
)

// newTestClient 建立一個不帶實際連線的客戶端，事件直接從 SendChan 取出驗證
func newTestClient(m *WebSocketManager, id, displayName string) *Client {
	client := &Client{
		ID:          id,
		UserID:      1,
		DisplayName: displayName,
		SendChan:    make(chan *models.Event, 256),
	}
	m.addClient(client)
	return client
}

// drain 取出目前累積的所有事件
func drain(c *Client) []*models.Event {
	var events []*models.Event
	for {
		select {
		case event := <-c.SendChan:
			events = append(events, event)
		default:
			return events
		}
	}
}

func join(t *testing.T, m *WebSocketManager, client *Client, roomID string) {
	t.Helper()
	err := m.Dispatch(client, &models.Event{Type: models.EventJoinRoom, RoomID: roomID})
	require.NoError(t, err)
}

func mustPayload(t *testing.T, payload interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return data
}

func eventTypes(events []*models.Event) []models.EventType {
	types := make([]models.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestJoinRoomNotifiesMembers(t *testing.T) {
	m := NewWebSocketManager(NewRoomRegistry())
	a := newTestClient(m, "conn-a", "alice")
	b := newTestClient(m, "conn-b", "bob")

	join(t, m, a, "r1")
	drain(a)

	join(t, m, b, "r1")

	// 既有成員收到 participant_joined 與最新名單
	aEvents := drain(a)
	assert.Contains(t, eventTypes(aEvents), models.EventUserJoined)
	assert.Contains(t, eventTypes(aEvents), models.EventRoomUsers)

	// 新成員自己只收到名單，不會收到自己的 participant_joined
	bEvents := drain(b)
	assert.NotContains(t, eventTypes(bEvents), models.EventUserJoined)
	require.Contains(t, eventTypes(bEvents), models.EventRoomUsers)

	for _, event := range bEvents {
		if event.Type == models.EventRoomUsers {
			var payload models.RoomUsersPayload
			require.NoError(t, json.Unmarshal(event.Data, &payload))
			assert.Equal(t, 2, payload.Count)
		}
	}
}

// code_change 必須送達除了發送者以外的所有成員（迴聲抑制）
func TestCodeChangeExcludesSender(t *testing.T) {
	m := NewWebSocketManager(NewRoomRegistry())
	a := newTestClient(m, "conn-a", "alice")
	b := newTestClient(m, "conn-b", "bob")
	join(t, m, a, "r1")
	join(t, m, b, "r1")
	drain(a)
	drain(b)

	err := m.Dispatch(a, &models.Event{
		Type:   models.EventCodeChange,
		RoomID: "r1",
		Data:   mustPayload(t, models.CodePayload{Code: "x=1"}),
	})
	require.NoError(t, err)

	// 發送者不會收到自己的修改
	assert.Empty(t, drain(a))

	bEvents := drain(b)
	require.Len(t, bEvents, 1)
	assert.Equal(t, models.EventCodeChange, bEvents[0].Type)
	assert.Equal(t, "conn-a", bEvents[0].SenderID)

	var payload models.CodePayload
	require.NoError(t, json.Unmarshal(bEvents[0].Data, &payload))
	assert.Equal(t, "x=1", payload.Code)
}

func TestCursorAndIOStateExcludeSender(t *testing.T) {
	m := NewWebSocketManager(NewRoomRegistry())
	a := newTestClient(m, "conn-a", "alice")
	b := newTestClient(m, "conn-b", "bob")
	join(t, m, a, "r1")
	join(t, m, b, "r1")
	drain(a)
	drain(b)

	require.NoError(t, m.Dispatch(a, &models.Event{
		Type:   models.EventCursorMove,
		RoomID: "r1",
		Data:   mustPayload(t, models.CursorPayload{Line: 3, Column: 7}),
	}))
	require.NoError(t, m.Dispatch(a, &models.Event{
		Type:   models.EventIOState,
		RoomID: "r1",
		Data:   mustPayload(t, models.IOPayload{Kind: "input", Value: "42"}),
	}))

	assert.Empty(t, drain(a))
	assert.Equal(t, []models.EventType{models.EventCursorMove, models.EventIOState}, eventTypes(drain(b)))
}

// 聊天訊息與編輯事件不同，發送者本人也會收到
func TestChatMessageIncludesSender(t *testing.T) {
	m := NewWebSocketManager(NewRoomRegistry())
	a := newTestClient(m, "conn-a", "alice")
	b := newTestClient(m, "conn-b", "bob")
	join(t, m, a, "r1")
	join(t, m, b, "r1")
	drain(a)
	drain(b)

	err := m.Dispatch(a, &models.Event{
		Type:   models.EventChatMessage,
		RoomID: "r1",
		Data:   mustPayload(t, models.ChatPayload{Text: "hi"}),
	})
	require.NoError(t, err)

	for _, client := range []*Client{a, b} {
		events := drain(client)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventChatMessage, events[0].Type)
		assert.Equal(t, "conn-a", events[0].SenderID)
		assert.Equal(t, "alice", events[0].DisplayName)
		assert.False(t, events[0].Timestamp.IsZero())
	}
}

// 事件只會送到自己房間，不會洩漏到其他房間
func TestBroadcastScopedToRoom(t *testing.T) {
	m := NewWebSocketManager(NewRoomRegistry())
	a := newTestClient(m, "conn-a", "alice")
	b := newTestClient(m, "conn-b", "bob")
	c := newTestClient(m, "conn-c", "carol")
	join(t, m, a, "r1")
	join(t, m, b, "r1")
	join(t, m, c, "r2")
	drain(a)
	drain(b)
	drain(c)

	require.NoError(t, m.Dispatch(a, &models.Event{
		Type:   models.EventCodeChange,
		RoomID: "r1",
		Data:   mustPayload(t, models.CodePayload{Code: "y=2"}),
	}))

	assert.Len(t, drain(b), 1)
	assert.Empty(t, drain(c))
}

func TestDisconnectNotifiesRemaining(t *testing.T) {
	m := NewWebSocketManager(NewRoomRegistry())
	a := newTestClient(m, "conn-a", "alice")
	b := newTestClient(m, "conn-b", "bob")
	join(t, m, a, "r1")
	join(t, m, b, "r1")
	drain(a)
	drain(b)

	m.disconnect(b)

	aEvents := drain(a)
	assert.Contains(t, eventTypes(aEvents), models.EventUserLeft)
	for _, event := range aEvents {
		if event.Type == models.EventRoomUsers {
			var payload models.RoomUsersPayload
			require.NoError(t, json.Unmarshal(event.Data, &payload))
			assert.Equal(t, 1, payload.Count)
		}
	}

	// 最後一個人離開後房間必須被回收
	m.disconnect(a)
	assert.Equal(t, 0, m.registry.RoomCount())
	assert.Equal(t, 0, m.ClientCount())
}

// 換房間時舊房間的成員要收到離開通知
func TestSwitchingRoomsNotifiesPreviousRoom(t *testing.T) {
	m := NewWebSocketManager(NewRoomRegistry())
	a := newTestClient(m, "conn-a", "alice")
	b := newTestClient(m, "conn-b", "bob")
	join(t, m, a, "r1")
	join(t, m, b, "r1")
	drain(a)
	drain(b)

	join(t, m, b, "r2")

	aEvents := drain(a)
	assert.Contains(t, eventTypes(aEvents), models.EventUserLeft)
	require.Len(t, m.registry.Participants("r1"), 1)
	assert.Equal(t, "r2", m.registry.RoomOf("conn-b"))
}

// 格式錯誤的事件只回報給該連線，不會中斷連線或廣播出去
func TestDispatchRejectsMalformedEvents(t *testing.T) {
	m := NewWebSocketManager(NewRoomRegistry())
	a := newTestClient(m, "conn-a", "alice")
	b := newTestClient(m, "conn-b", "bob")
	join(t, m, a, "r1")
	join(t, m, b, "r1")
	drain(a)
	drain(b)

	cases := []struct {
		name  string
		event *models.Event
		want  error
	}{
		{"未知類型", &models.Event{Type: "bogus", RoomID: "r1"}, ErrUnknownEvent},
		{"缺少房間", &models.Event{Type: models.EventCodeChange}, ErrMissingRoomID},
		{"未加入房間", &models.Event{Type: models.EventCodeChange, RoomID: "r9", Data: mustPayload(t, models.CodePayload{Code: "x"})}, ErrNotInRoom},
		{"空內容", &models.Event{Type: models.EventCodeChange, RoomID: "r1"}, ErrBadPayload},
		{"聊天空訊息", &models.Event{Type: models.EventChatMessage, RoomID: "r1", Data: mustPayload(t, models.ChatPayload{})}, ErrBadPayload},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := m.Dispatch(a, tc.event)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, drain(b))
		})
	}
}
