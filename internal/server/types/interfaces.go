// Package types 定义 server 内部共享的接口，便于测试替换
package types

import (
	"github.com/undercover-games/spy-villagers/internal/protocol"
)

// ClientInterface 一条玩家连接
type ClientInterface interface {
	GetID() string   // 连接级 ID
	GetName() string // 昵称（加入房间时提供）
	GetRoom() string
	SetRoom(roomID string)
	GetPlayerID() string // 房间内的逻辑玩家 ID（同名认领后可能不等于连接 ID）
	SetPlayerID(playerID string)
	SendMessage(msg *protocol.Message)
	Close()
}
