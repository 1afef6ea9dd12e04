package apperrors

import (
	"github.com/undercover-games/spy-villagers/internal/protocol"
)

// GameError 游戏错误（房间和状态机共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// ErrorCode 协议错误码，供 protocol.NewErrorFromError 折叠
func (e *GameError) ErrorCode() int {
	return e.Code
}

// 预定义错误
var (
	ErrRoomNotFound       = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrRoomFull           = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrNotInRoom          = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrGameAlreadyStarted = &GameError{Code: protocol.ErrCodeGameStarted, Message: "游戏已开始，无法加入"}
	ErrGameNotStart       = &GameError{Code: protocol.ErrCodeGameNotStart, Message: "游戏尚未开始"}
	ErrVoteChangeDenied   = &GameError{Code: protocol.ErrCodeVoteChange, Message: "本局不允许更改投票"}
	ErrInvalidVoteTarget  = &GameError{Code: protocol.ErrCodeInvalidTarget, Message: "无效的投票对象"}
	ErrInvalidGuess       = &GameError{Code: protocol.ErrCodeInvalidGuess, Message: "无效的猜词请求"}
)
