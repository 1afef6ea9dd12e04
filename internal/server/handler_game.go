package server

import (
	"github.com/undercover-games/spy-villagers/internal/protocol"
	"github.com/undercover-games/spy-villagers/internal/server/types"
)

// sendGameError 将游戏错误转为错误消息发给客户端
func sendGameError(client types.ClientInterface, err error) {
	if err == nil {
		return
	}
	client.SendMessage(protocol.NewErrorFromError(err))
}

// handleStartGame 处理开始游戏（仅房主）
func (h *Handler) handleStartGame(client types.ClientInterface) {
	room := h.roomOf(client)
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}
	room.StartGame(client.GetPlayerID())
}

// handleStartVoting 处理发起投票
func (h *Handler) handleStartVoting(client types.ClientInterface) {
	room := h.roomOf(client)
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}
	room.StartVoting()
}

// handleVote 处理投票
func (h *Handler) handleVote(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.VotePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	room := h.roomOf(client)
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	if err := room.Vote(client.GetPlayerID(), payload.TargetID); err != nil {
		sendGameError(client, err)
	}
}

// handleResolveVote 处理手动结算投票。
// 计时器到期也会触发同一结算路径，非 voting 状态下结算是空操作，
// 因此重复触发不会产生二次淘汰。
func (h *Handler) handleResolveVote(client types.ClientInterface) {
	room := h.roomOf(client)
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}
	room.ResolveVote()
}

// handleGuessWord 处理猜词
func (h *Handler) handleGuessWord(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.GuessWordPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	room := h.roomOf(client)
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	if err := room.GuessWord(client.GetPlayerID(), payload.Guess); err != nil {
		sendGameError(client, err)
	}
}

// handleCheckViability 处理存活性检查请求
func (h *Handler) handleCheckViability(client types.ClientInterface) {
	if room := h.roomOf(client); room != nil {
		room.CheckViability()
	}
}

// handleEndReveal 处理结束揭示阶段
func (h *Handler) handleEndReveal(client types.ClientInterface) {
	if room := h.roomOf(client); room != nil {
		room.EndReveal()
	}
}

// handleBackToLobby 处理返回大厅（仅房主，游戏结束后）
func (h *Handler) handleBackToLobby(client types.ClientInterface) {
	room := h.roomOf(client)
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}
	room.BackToLobby(client.GetPlayerID())
}

// handleResetRoom 处理重置房间（仅房主）
func (h *Handler) handleResetRoom(client types.ClientInterface) {
	room := h.roomOf(client)
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}
	room.ResetRoom(client.GetPlayerID())
}
