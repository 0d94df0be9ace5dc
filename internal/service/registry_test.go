package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryJoinCreatesRoom(t *testing.T) {
	registry := NewRoomRegistry()

	participants, previous := registry.Join("conn-a", "r1", "alice")

	require.Len(t, participants, 1)
	assert.Equal(t, "conn-a", participants[0].ConnID)
	assert.Equal(t, "alice", participants[0].DisplayName)
	assert.Empty(t, previous)
	assert.Equal(t, 1, registry.RoomCount())
}

func TestRegistryJoinExistingRoomKeepsOthers(t *testing.T) {
	registry := NewRoomRegistry()
	registry.Join("conn-a", "r1", "alice")

	participants, _ := registry.Join("conn-b", "r1", "bob")

	require.Len(t, participants, 2)
	names := map[string]string{}
	for _, p := range participants {
		names[p.ConnID] = p.DisplayName
	}
	assert.Equal(t, "alice", names["conn-a"])
	assert.Equal(t, "bob", names["conn-b"])
}

// 一條連線同時只能屬於一個房間：加入新房間會隱式離開舊房間
func TestRegistrySingleRoomMembership(t *testing.T) {
	registry := NewRoomRegistry()
	registry.Join("conn-a", "r1", "alice")

	participants, previous := registry.Join("conn-a", "r2", "alice")

	assert.Equal(t, "r1", previous)
	require.Len(t, participants, 1)
	assert.Empty(t, registry.Participants("r1"))
	assert.Equal(t, "r2", registry.RoomOf("conn-a"))
	// 舊房間清空後必須被回收
	assert.Equal(t, 1, registry.RoomCount())
}

func TestRegistryRejoinSameRoomIsIdempotent(t *testing.T) {
	registry := NewRoomRegistry()
	registry.Join("conn-a", "r1", "alice")

	participants, previous := registry.Join("conn-a", "r1", "alice")

	assert.Empty(t, previous)
	assert.Len(t, participants, 1)
}

func TestRegistryLeaveLastParticipantDeletesRoom(t *testing.T) {
	registry := NewRoomRegistry()
	registry.Join("conn-a", "r1", "alice")
	registry.Join("conn-b", "r1", "bob")

	remaining, deleted := registry.Leave("conn-a", "r1")
	assert.False(t, deleted)
	require.Len(t, remaining, 1)
	assert.Equal(t, "conn-b", remaining[0].ConnID)

	remaining, deleted = registry.Leave("conn-b", "r1")
	assert.True(t, deleted)
	assert.Nil(t, remaining)
	assert.Equal(t, 0, registry.RoomCount())
	assert.Equal(t, 0, registry.ConnCount())
}

// 對不存在的房間操作不是錯誤，視為零人房間
func TestRegistryUnknownRoom(t *testing.T) {
	registry := NewRoomRegistry()

	assert.Empty(t, registry.Participants("nope"))

	_, deleted := registry.Leave("conn-a", "nope")
	assert.True(t, deleted)
	assert.Equal(t, 0, registry.RoomCount())
}

func TestRegistryInRoom(t *testing.T) {
	registry := NewRoomRegistry()
	registry.Join("conn-a", "r1", "alice")

	assert.True(t, registry.InRoom("conn-a", "r1"))
	assert.False(t, registry.InRoom("conn-a", "r2"))
	assert.False(t, registry.InRoom("conn-b", "r1"))
}
