package server

import (
	"log"
	"time"

	"github.com/undercover-games/spy-villagers/internal/protocol"
	"github.com/undercover-games/spy-villagers/internal/server/types"
)

// Handler 消息处理器
type Handler struct {
	rooms *RoomManager
}

// NewHandler 创建处理器
func NewHandler(s *Server) *Handler {
	return &Handler{rooms: s.roomManager}
}

// NewHandlerWithManager 直接用房间管理器构建处理器（测试用）
func NewHandlerWithManager(rm *RoomManager) *Handler {
	return &Handler{rooms: rm}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	switch msg.Type {
	// 连接操作
	case protocol.MsgPing:
		h.handlePing(client, msg)
	case protocol.MsgSetOnline:
		h.handleSetOnline(client)

	// 房间操作
	case protocol.MsgCreateRoom:
		h.handleCreateRoom(client, msg)
	case protocol.MsgJoinRoom:
		h.handleJoinRoom(client, msg)
	case protocol.MsgLeaveRoom:
		h.handleLeaveRoom(client)
	case protocol.MsgUpdateSettings:
		h.handleUpdateSettings(client, msg)
	case protocol.MsgUpdateAvatar:
		h.handleUpdateAvatar(client, msg)

	// 游戏操作
	case protocol.MsgStartGame:
		h.handleStartGame(client)
	case protocol.MsgStartVoting:
		h.handleStartVoting(client)
	case protocol.MsgVote:
		h.handleVote(client, msg)
	case protocol.MsgResolveVote:
		h.handleResolveVote(client)
	case protocol.MsgGuessWord:
		h.handleGuessWord(client, msg)
	case protocol.MsgCheckViability:
		h.handleCheckViability(client)
	case protocol.MsgEndReveal:
		h.handleEndReveal(client)
	case protocol.MsgBackToLobby:
		h.handleBackToLobby(client)
	case protocol.MsgResetRoom:
		h.handleResetRoom(client)

	default:
		log.Printf("⚠️  未知消息类型: '%s' (连接: %s)", msg.Type, client.GetID())
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

// handlePing 处理心跳
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// roomOf 取客户端所在房间，不在房间中返回 nil
func (h *Handler) roomOf(client types.ClientInterface) *Room {
	roomID := client.GetRoom()
	if roomID == "" {
		return nil
	}
	return h.rooms.GetRoom(roomID)
}
