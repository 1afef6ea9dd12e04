package protocol

import (
	"encoding/json"

	"github.com/undercover-games/spy-villagers/internal/game"
)

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing      MessageType = "ping"       // 心跳 ping
	MsgSetOnline MessageType = "set_online" // 主动重报在线（网络恢复后）

	// 房间操作
	MsgCreateRoom     MessageType = "create_room"     // 创建房间
	MsgJoinRoom       MessageType = "join_room"       // 加入房间（同名则重连认领）
	MsgLeaveRoom      MessageType = "leave_room"      // 离开房间
	MsgUpdateSettings MessageType = "update_settings" // 修改房间设置（仅房主）
	MsgUpdateAvatar   MessageType = "update_avatar"   // 修改头像

	// 游戏操作
	MsgStartGame      MessageType = "start_game"      // 开始游戏（仅房主）
	MsgStartVoting    MessageType = "start_voting"    // 发起投票
	MsgVote           MessageType = "vote"            // 投票
	MsgResolveVote    MessageType = "resolve_vote"    // 开票（倒计时结束时客户端也会触发）
	MsgGuessWord      MessageType = "guess_word"      // 猜对方阵营的词
	MsgCheckViability MessageType = "check_viability" // 显式触发一次存活检查
	MsgEndReveal      MessageType = "end_reveal"      // 结束揭示/平局画面
	MsgBackToLobby    MessageType = "back_to_lobby"   // 换词回大厅（仅房主）
	MsgResetRoom      MessageType = "reset_room"      // 直接重置回大厅（仅房主）
)

// 服务端 → 客户端 消息类型
const (
	MsgConnected   MessageType = "connected"    // 连接成功
	MsgPong        MessageType = "pong"         // 心跳 pong
	MsgRoomCreated MessageType = "room_created" // 房间创建成功
	MsgRoomJoined  MessageType = "room_joined"  // 加入房间成功（含认领后的正式 ID）
	MsgRoomUpdate  MessageType = "room_update"  // 房间快照（每次状态变更后推送）
	MsgRoomClosed  MessageType = "room_closed"  // 房间已解散
	MsgError       MessageType = "error"        // 错误消息
)

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Name string `json:"name"` // 房主昵称
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomID string `json:"room_id"` // 8 位数字房间号
	Name   string `json:"name"`
}

// UpdateSettingsPayload 修改设置请求
type UpdateSettingsPayload struct {
	Config game.RoomConfig `json:"config"`
}

// UpdateAvatarPayload 修改头像请求
type UpdateAvatarPayload struct {
	Avatar string `json:"avatar"`
}

// VotePayload 投票请求
type VotePayload struct {
	TargetID string `json:"target_id"`
}

// GuessWordPayload 猜词请求
type GuessWordPayload struct {
	Guess string `json:"guess"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	ConnID string `json:"conn_id"` // 连接级 ID，加入房间前的临时身份
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 原样返回客户端时间戳
	ServerTimestamp int64 `json:"server_timestamp"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomID   string     `json:"room_id"`
	PlayerID string     `json:"player_id"`
	Room     *game.Room `json:"room"`
}

// RoomJoinedPayload 加入房间成功响应。
// PlayerID 可能不等于连接 ID：同名认领时沿用旧玩家身份，客户端必须以此为准。
type RoomJoinedPayload struct {
	RoomID   string     `json:"room_id"`
	PlayerID string     `json:"player_id"`
	Room     *game.Room `json:"room"`
}

// RoomUpdatePayload 房间快照推送
type RoomUpdatePayload struct {
	Room *game.Room `json:"room"`
}

// RoomClosedPayload 房间解散通知
type RoomClosedPayload struct {
	RoomID string `json:"room_id"`
	Reason string `json:"reason,omitempty"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
