package transport

import (
	"time"

	"github.com/undercover-games/spy-villagers/internal/game"
	"github.com/undercover-games/spy-villagers/internal/protocol"
)

// --- 便捷方法 ---

// CreateRoom 创建房间
func (c *Client) CreateRoom(name string) error {
	c.PlayerName = name
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		Name: name,
	}))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomID, name string) error {
	c.PlayerName = name
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomID: roomID,
		Name:   name,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	c.RoomID = ""
	c.PlayerID = ""
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgLeaveRoom, nil))
}

// SetOnline 重报在线（网络恢复后的幂等声明）
func (c *Client) SetOnline() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgSetOnline, nil))
}

// UpdateSettings 修改房间设置（仅房主）
func (c *Client) UpdateSettings(cfg game.RoomConfig) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgUpdateSettings, protocol.UpdateSettingsPayload{
		Config: cfg,
	}))
}

// UpdateAvatar 修改头像
func (c *Client) UpdateAvatar(avatar string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgUpdateAvatar, protocol.UpdateAvatarPayload{
		Avatar: avatar,
	}))
}

// StartGame 开始游戏（仅房主）
func (c *Client) StartGame() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgStartGame, nil))
}

// StartVoting 发起投票
func (c *Client) StartVoting() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgStartVoting, nil))
}

// Vote 投票
func (c *Client) Vote(targetID string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgVote, protocol.VotePayload{
		TargetID: targetID,
	}))
}

// ResolveVote 提前结算投票
func (c *Client) ResolveVote() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgResolveVote, nil))
}

// GuessWord 卧底猜词
func (c *Client) GuessWord(guess string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgGuessWord, protocol.GuessWordPayload{
		Guess: guess,
	}))
}

// EndReveal 结束揭示阶段
func (c *Client) EndReveal() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgEndReveal, nil))
}

// BackToLobby 返回大厅开新一轮（仅房主）
func (c *Client) BackToLobby() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgBackToLobby, nil))
}

// ResetRoom 重置房间（仅房主）
func (c *Client) ResetRoom() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgResetRoom, nil))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
