package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"codepad/internal/models"
)

var (
	ErrUnknownEvent  = errors.New("未知的事件類型")
	ErrMissingRoomID = errors.New("事件缺少房間 ID")
	ErrNotInRoom     = errors.New("連線尚未加入此房間")
	ErrBadPayload    = errors.New("事件內容格式錯誤")
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	ID          string             // 連線 ID，伺服器產生
	UserID      uint               // 用戶 ID
	DisplayName string             // 顯示名稱
	Conn        *websocket.Conn    // WebSocket 連接
	SendChan    chan *models.Event // 事件發送通道，用於異步傳送事件
}

// eventHandler 處理一種客戶端事件；回傳的錯誤只會回報給該連線，不會中斷它
type eventHandler func(client *Client, event *models.Event) error

// WebSocketManager 管理所有的 WebSocket 連接，
// 並負責把房間內的事件轉發給其他成員（廣播路由）
type WebSocketManager struct {
	registry   *RoomRegistry
	clients    map[string]*Client // connID -> client
	clientsMux sync.RWMutex       // 用於保護 clients map 的讀寫鎖
	handlers   map[models.EventType]eventHandler
}

// NewWebSocketManager 創建並初始化新的 WebSocket 管理器
func NewWebSocketManager(registry *RoomRegistry) *WebSocketManager {
	m := &WebSocketManager{
		registry: registry,
		clients:  make(map[string]*Client),
	}

	// 事件類型到處理函數的分派表
	m.handlers = map[models.EventType]eventHandler{
		models.EventJoinRoom:    m.handleJoinRoom,
		models.EventLeaveRoom:   m.handleLeaveRoom,
		models.EventCodeChange:  m.handleRelayExcludeSender,
		models.EventCursorMove:  m.handleRelayExcludeSender,
		models.EventIOState:     m.handleRelayExcludeSender,
		models.EventChatMessage: m.handleChatMessage,
	}

	return m
}

// HandleConnection 處理新的 WebSocket 連接請求，
// 阻塞直到連線關閉，並保證離線時同步清理房間狀態
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn, userID uint, displayName string) {
	client := &Client{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: displayName,
		Conn:        conn,
		SendChan:    make(chan *models.Event, 256), // 設置緩衝大小為 256 的事件通道
	}

	m.addClient(client)

	// 告知客戶端它的連線 ID
	if event, err := models.NewEvent(models.EventConnected, "", models.ParticipantInfo{
		ConnID:      client.ID,
		DisplayName: client.DisplayName,
	}); err == nil {
		client.SendChan <- event
	}

	// 確保連接關閉時清理資源；
	// 斷線必須立刻把成員從房間移除並通知其他人，否則留下的幽靈成員會讓在線人數顯示錯誤
	defer func() {
		m.disconnect(client)
		conn.Close()
		close(client.SendChan)
	}()

	// 啟動讀寫處理
	go m.writePump(client)
	m.readPump(client)
}

// readPump 持續監聽並處理從客戶端接收的事件。
// 事件在這裡被依序處理，因此同一個發送者的事件天然維持先進先出的順序；
// 不同發送者之間不做任何全局排序，衝突由最後寫入者勝出收斂。
func (m *WebSocketManager) readPump(client *Client) {
	client.Conn.SetReadLimit(256 * 1024) // 程式碼內容可能較大，上限設為 256KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("conn_id", client.ID).Warnf("websocket unexpected close error: %v", err)
			}
			break
		}

		// 解析接收到的事件；格式錯誤只回報給該連線，不能弄斷連線或行程
		var event models.Event
		if err := json.Unmarshal(message, &event); err != nil {
			m.sendError(client, ErrBadPayload.Error())
			continue
		}

		if err := m.Dispatch(client, &event); err != nil {
			m.sendError(client, err.Error())
		}
	}
}

// Dispatch 把事件交給對應的處理函數
func (m *WebSocketManager) Dispatch(client *Client, event *models.Event) error {
	handler, ok := m.handlers[event.Type]
	if !ok {
		return ErrUnknownEvent
	}
	return handler(client, event)
}

// writePump 處理向客戶端發送事件的邏輯
func (m *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// 獲取寫入器並發送事件
			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			// JSON 編碼
			eventBytes, err := json.Marshal(event)
			if err != nil {
				logrus.Errorf("event encoding error: %v", err)
				continue
			}

			if _, err := w.Write(eventBytes); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleJoinRoom 處理加入房間：
// 若連線原本在別的房間會被隱式移出，舊房間的成員也會收到更新
func (m *WebSocketManager) handleJoinRoom(client *Client, event *models.Event) error {
	if event.RoomID == "" {
		return ErrMissingRoomID
	}

	displayName := client.DisplayName
	if len(event.Data) > 0 {
		var payload models.JoinPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return ErrBadPayload
		}
		if payload.DisplayName != "" {
			displayName = payload.DisplayName
		}
	}

	participants, previous := m.registry.Join(client.ID, event.RoomID, displayName)

	// 舊房間若還有人，通知他們這個成員已離開並更新名單
	if previous != "" {
		if remaining := m.registry.Participants(previous); len(remaining) > 0 {
			m.notifyLeft(previous, client, displayName)
			m.broadcastRoomUsers(previous, remaining)
		}
	}

	logrus.WithFields(logrus.Fields{
		"conn_id": client.ID,
		"room_id": event.RoomID,
		"count":   len(participants),
	}).Info("client joined room")

	// 向其他成員宣告新成員
	if joined, err := models.NewEvent(models.EventUserJoined, event.RoomID, models.ParticipantInfo{
		ConnID:      client.ID,
		DisplayName: displayName,
	}); err == nil {
		joined.SenderID = client.ID
		joined.DisplayName = displayName
		m.BroadcastToRoom(event.RoomID, joined, client.ID)
	}

	// 向包含新成員在內的所有成員發送最新名單
	m.broadcastRoomUsers(event.RoomID, participants)
	return nil
}

// handleLeaveRoom 處理離開房間
func (m *WebSocketManager) handleLeaveRoom(client *Client, event *models.Event) error {
	if event.RoomID == "" {
		return ErrMissingRoomID
	}
	if !m.registry.InRoom(client.ID, event.RoomID) {
		return ErrNotInRoom
	}

	m.leaveAndNotify(client, event.RoomID)
	return nil
}

// handleRelayExcludeSender 處理 code_change、cursor_change 與 io_state：
// 轉發給房間內除了發送者以外的所有成員。
// 發送者本地已有權威狀態，再把它自己的修改回傳只會造成畫面閃動。
func (m *WebSocketManager) handleRelayExcludeSender(client *Client, event *models.Event) error {
	if err := m.validateRelay(client, event); err != nil {
		return err
	}

	event.SenderID = client.ID
	event.DisplayName = client.DisplayName
	event.Timestamp = time.Now()
	m.BroadcastToRoom(event.RoomID, event, client.ID)
	return nil
}

// handleChatMessage 處理聊天訊息：
// 與編輯事件不同，聊天訊息也會送回發送者本人，
// 讓多視窗的客戶端和其他成員走同一條路徑渲染，訊息順序只有一個來源。
// 聊天內容不落地，只存在於廣播過程中。
func (m *WebSocketManager) handleChatMessage(client *Client, event *models.Event) error {
	if err := m.validateRelay(client, event); err != nil {
		return err
	}

	var payload models.ChatPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil || payload.Text == "" {
		return ErrBadPayload
	}

	event.SenderID = client.ID
	event.DisplayName = client.DisplayName
	event.Timestamp = time.Now()
	m.BroadcastToRoom(event.RoomID, event, "")
	return nil
}

// validateRelay 在事件進入廣播路由前做邊界檢查
func (m *WebSocketManager) validateRelay(client *Client, event *models.Event) error {
	if event.RoomID == "" {
		return ErrMissingRoomID
	}
	if !m.registry.InRoom(client.ID, event.RoomID) {
		return ErrNotInRoom
	}
	if len(event.Data) == 0 || !json.Valid(event.Data) {
		return ErrBadPayload
	}
	return nil
}

// BroadcastToRoom 向房間內的成員廣播事件，
// excludeConnID 非空時跳過該連線（迴聲抑制）。
// 廣播是射後不理：已斷線的成員不會收到，也不做重送或暫存。
func (m *WebSocketManager) BroadcastToRoom(roomID string, event *models.Event, excludeConnID string) {
	participants := m.registry.Participants(roomID)

	m.clientsMux.RLock()
	targets := make([]*Client, 0, len(participants))
	for _, p := range participants {
		if p.ConnID == excludeConnID {
			continue
		}
		if client, ok := m.clients[p.ConnID]; ok {
			targets = append(targets, client)
		}
	}
	m.clientsMux.RUnlock()

	for _, client := range targets {
		select {
		case client.SendChan <- event:
			// 事件成功加入發送隊列
		default:
			// 客戶端事件隊列已滿，視為失聯並斷開
			logrus.WithField("conn_id", client.ID).Warn("send queue full, dropping client")
			if client.Conn != nil {
				client.Conn.Close()
			}
		}
	}
}

// BroadcastExecutionResult 把一次程式碼執行的結果廣播給房間內其他成員，
// 作為 io_state 的輸出事件
func (m *WebSocketManager) BroadcastExecutionResult(roomID, senderConnID string, result *models.ExecutionResult) {
	event, err := models.NewEvent(models.EventIOState, roomID, models.IOPayload{
		Kind:  "output",
		Value: result.Stdout,
	})
	if err != nil {
		return
	}
	event.SenderID = senderConnID
	m.BroadcastToRoom(roomID, event, senderConnID)
}

// disconnect 處理連線中斷：離開所在房間並通知其他成員。
// 這個清理是同步進行的，不能延後
func (m *WebSocketManager) disconnect(client *Client) {
	if roomID := m.registry.RoomOf(client.ID); roomID != "" {
		m.leaveAndNotify(client, roomID)
	}
	m.removeClient(client)
}

// leaveAndNotify 執行離開動作並向剩餘成員發送通知
func (m *WebSocketManager) leaveAndNotify(client *Client, roomID string) {
	participants, deleted := m.registry.Leave(client.ID, roomID)
	if deleted {
		logrus.WithField("room_id", roomID).Info("room closed (empty)")
		return
	}

	m.notifyLeft(roomID, client, client.DisplayName)
	m.broadcastRoomUsers(roomID, participants)
}

// notifyLeft 向房間成員宣告某個成員已離開
func (m *WebSocketManager) notifyLeft(roomID string, client *Client, displayName string) {
	if left, err := models.NewEvent(models.EventUserLeft, roomID, models.ParticipantInfo{
		ConnID:      client.ID,
		DisplayName: displayName,
	}); err == nil {
		left.SenderID = client.ID
		left.DisplayName = displayName
		m.BroadcastToRoom(roomID, left, client.ID)
	}
}

// broadcastRoomUsers 向房間所有成員（含觸發者）發送最新參與者名單
func (m *WebSocketManager) broadcastRoomUsers(roomID string, participants []models.ParticipantInfo) {
	event, err := models.NewEvent(models.EventRoomUsers, roomID, models.RoomUsersPayload{
		Participants: participants,
		Count:        len(participants),
	})
	if err != nil {
		return
	}
	m.BroadcastToRoom(roomID, event, "")
}

// sendError 向單一連線回報錯誤，不影響其他成員
func (m *WebSocketManager) sendError(client *Client, message string) {
	if event, err := models.NewEvent(models.EventError, "", models.ErrorPayload{Message: message}); err == nil {
		select {
		case client.SendChan <- event:
		default:
		}
	}
}

// addClient 安全地添加新的客戶端連接
func (m *WebSocketManager) addClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()
	m.clients[client.ID] = client
}

// removeClient 安全地移除客戶端連接
func (m *WebSocketManager) removeClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()
	delete(m.clients, client.ID)
}

// ClientCount 獲取目前的在線連線數量
func (m *WebSocketManager) ClientCount() int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()
	return len(m.clients)
}
