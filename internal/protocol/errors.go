package protocol

// 错误码
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001

	ErrCodeRoomNotFound = 2001
	ErrCodeRoomFull     = 2002
	ErrCodeNotInRoom    = 2003
	ErrCodeGameStarted  = 2004 // 游戏已开始，新玩家无法加入

	ErrCodeGameNotStart  = 3001
	ErrCodeVoteChange    = 3002 // 不允许更改投票
	ErrCodeInvalidTarget = 3003
	ErrCodeInvalidGuess  = 3004
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:       "未知错误",
	ErrCodeInvalidMsg:    "无效的消息格式",
	ErrCodeRoomNotFound:  "房间不存在",
	ErrCodeRoomFull:      "房间已满",
	ErrCodeNotInRoom:     "您不在房间中",
	ErrCodeGameStarted:   "游戏已开始，无法加入",
	ErrCodeGameNotStart:  "游戏尚未开始",
	ErrCodeVoteChange:    "本局不允许更改投票",
	ErrCodeInvalidTarget: "无效的投票对象",
	ErrCodeInvalidGuess:  "无效的猜词请求",
}
