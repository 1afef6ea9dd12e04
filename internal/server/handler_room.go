package server

import (
	"strings"

	"github.com/undercover-games/spy-villagers/internal/protocol"
	"github.com/undercover-games/spy-villagers/internal/server/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil || strings.TrimSpace(payload.Name) == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 如果已在房间中，先离开
	if room := h.roomOf(client); room != nil {
		room.Leave(client.GetPlayerID())
	}

	name := strings.TrimSpace(payload.Name)
	room, playerID, err := h.rooms.CreateRoom(client, name)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomID:   room.ID(),
		PlayerID: playerID,
		Room:     room.Snapshot(),
	}))
}

// handleJoinRoom 处理加入房间。认领场景下返回的 player_id
// 可能不等于连接 ID，客户端必须用它更新本地身份。
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil || strings.TrimSpace(payload.Name) == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 如果已在房间中，先离开
	if room := h.roomOf(client); room != nil {
		room.Leave(client.GetPlayerID())
	}

	room := h.rooms.GetRoom(payload.RoomID)
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRoomNotFound))
		return
	}

	playerID, err := room.Join(client, strings.TrimSpace(payload.Name))
	if err != nil {
		sendGameError(client, err)
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomID:   room.ID(),
		PlayerID: playerID,
		Room:     room.Snapshot(),
	}))
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	if room := h.roomOf(client); room != nil {
		room.Leave(client.GetPlayerID())
	}
}

// handleSetOnline 处理主动重报在线（网络恢复后的幂等声明）
func (h *Handler) handleSetOnline(client types.ClientInterface) {
	if room := h.roomOf(client); room != nil {
		room.SetOnline(client.GetPlayerID())
	}
}

// handleUpdateSettings 处理修改房间设置
func (h *Handler) handleUpdateSettings(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.UpdateSettingsPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if room := h.roomOf(client); room != nil {
		room.UpdateSettings(client.GetPlayerID(), payload.Config)
	}
}

// handleUpdateAvatar 处理修改头像
func (h *Handler) handleUpdateAvatar(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.UpdateAvatarPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if room := h.roomOf(client); room != nil {
		room.UpdateAvatar(client.GetPlayerID(), payload.Avatar)
	}
}
