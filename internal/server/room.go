package server

import (
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/undercover-games/spy-villagers/internal/apperrors"
	"github.com/undercover-games/spy-villagers/internal/config"
	"github.com/undercover-games/spy-villagers/internal/game"
	"github.com/undercover-games/spy-villagers/internal/game/words"
	"github.com/undercover-games/spy-villagers/internal/server/types"
)

// Room 房间运行时：文档 + 在线连接 + 命令通道。
// 文档的所有变更只发生在房间协程内（见 room_actor.go），
// 因此 apply* 方法内不需要锁，重复触发靠状态前置条件自保护。
type Room struct {
	doc      *game.Room
	cfg      *config.GameConfig
	selector *words.Selector
	manager  *RoomManager
	rng      *rand.Rand

	clients map[string]types.ClientInterface // playerID -> 连接

	commands chan func()
	done     chan struct{}
	closed   bool

	// 待落库的快照队列，由 persistLoop 串行消费
	saves chan []byte

	// 逢状态变更自增，过期的定时器据此丢弃
	generation uint64

	createdAt    time.Time
	lastActivity time.Time
}

func newRoom(doc *game.Room, cfg *config.GameConfig, selector *words.Selector, manager *RoomManager, rng *rand.Rand) *Room {
	r := &Room{
		doc:          doc,
		cfg:          cfg,
		selector:     selector,
		manager:      manager,
		rng:          rng,
		clients:      make(map[string]types.ClientInterface),
		commands:     make(chan func(), 64),
		done:         make(chan struct{}),
		saves:        make(chan []byte, 64),
		createdAt:    time.Now(),
		lastActivity: time.Now(),
	}
	if manager != nil && manager.store != nil {
		go r.persistLoop(manager.store)
	}
	return r
}

// nowMillis 文档时间戳统一用毫秒
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// --- 房间生命周期 ---

// applyJoin 加入房间。同名（大小写不敏感）视为同一身份的新连接：
// 沿用旧玩家 ID，无论游戏是否进行中都放行；全新玩家只能在大厅加入。
func (r *Room) applyJoin(client types.ClientInterface, name string) (string, error) {
	if existing := r.doc.FindPlayerByName(name); existing != nil {
		// 认领：旧身份的新连接
		existing.IsOnline = true
		existing.LastActive = nowMillis()
		if old, ok := r.clients[existing.ID]; ok && old.GetID() != client.GetID() {
			old.Close()
		}
		r.clients[existing.ID] = client
		client.SetPlayerID(existing.ID)
		client.SetRoom(r.doc.ID)

		log.Printf("📶 玩家 %s 重新认领身份 %s，房间 %s", name, existing.ID, r.doc.ID)
		return existing.ID, nil
	}

	if r.doc.Game.Status != game.StatusLobby {
		return "", apperrors.ErrGameAlreadyStarted
	}
	if len(r.doc.Players) >= r.doc.MaxPlayers {
		return "", apperrors.ErrRoomFull
	}

	playerID := client.GetID()
	r.doc.Players[playerID] = &game.Player{
		ID:       playerID,
		Name:     strings.TrimSpace(name),
		IsOnline: true,
		JoinedAt: nowMillis(),
		JoinSeq:  r.doc.NextJoinSeq,
	}
	r.doc.NextJoinSeq++
	r.clients[playerID] = client
	client.SetPlayerID(playerID)
	client.SetRoom(r.doc.ID)

	log.Printf("👤 玩家 %s (%s) 加入房间 %s", name, playerID, r.doc.ID)
	return playerID, nil
}

// applyLeave 离开房间。最后一人离开即解散；房主离开则把房主
// 移交给剩余玩家中加入最早的一位（JoinedAt 相同按加入序号）。
func (r *Room) applyLeave(playerID string) {
	player, ok := r.doc.Players[playerID]
	if !ok {
		return
	}

	wasHost := r.doc.IsHost(playerID)
	delete(r.doc.Players, playerID)
	if c, ok := r.clients[playerID]; ok {
		c.SetRoom("")
		c.SetPlayerID("")
		delete(r.clients, playerID)
	}

	// 投给离开者的票一并作废，开票时不会再指向不存在的玩家
	for _, p := range r.doc.Players {
		if p.Vote == playerID {
			p.Vote = ""
		}
	}

	log.Printf("👋 玩家 %s 离开房间 %s", player.Name, r.doc.ID)

	if len(r.doc.Players) == 0 {
		r.closeRoom("")
		return
	}

	if wasHost {
		newHostID := r.doc.OrderedPlayerIDs()[0]
		r.doc.HostID = newHostID
		log.Printf("👑 房间 %s 房主移交给 %s", r.doc.ID, r.doc.Players[newHostID].Name)
	}
}

// applySetOffline 连接断开：只标记离线，绝不删除玩家或房间。
// 善后（提前结束、房主移交、清人）由状态机响应该标记完成。
func (r *Room) applySetOffline(playerID string) {
	player, ok := r.doc.Players[playerID]
	if !ok {
		return
	}
	player.IsOnline = false
	delete(r.clients, playerID)
	log.Printf("📴 玩家 %s 在房间 %s 中掉线", player.Name, r.doc.ID)
}

// applySetOnline 主动重报在线（网络恢复后的幂等声明）
func (r *Room) applySetOnline(playerID string) {
	player, ok := r.doc.Players[playerID]
	if !ok {
		return
	}
	player.IsOnline = true
	player.LastActive = nowMillis()
}

// applyUpdateSettings 修改房间配置，仅房主，静默忽略其他人
func (r *Room) applyUpdateSettings(callerID string, cfg game.RoomConfig) {
	if !r.doc.IsHost(callerID) || r.doc.Game.Status != game.StatusLobby {
		return
	}
	if cfg.SpyCount < 1 {
		cfg.SpyCount = 1
	}
	if cfg.VoteDuration <= 0 {
		cfg.VoteDuration = r.doc.Config.VoteDuration
	}
	r.doc.Config = cfg
}

// applyUpdateAvatar 修改头像（纯展示字段，任何状态均可）
func (r *Room) applyUpdateAvatar(playerID, avatar string) {
	if player, ok := r.doc.Players[playerID]; ok {
		player.Avatar = avatar
	}
}

// --- 状态机转换 ---

// applyStartGame 开局：洗牌分配角色，前 spyCount 个为卧底
func (r *Room) applyStartGame(callerID string) {
	if !r.doc.IsHost(callerID) || r.doc.Game.Status != game.StatusLobby {
		return
	}
	if len(r.doc.Players) < r.doc.Config.MinPlayers() {
		log.Printf("⚠️ 房间 %s 人数不足（%d < %d），无法开局",
			r.doc.ID, len(r.doc.Players), r.doc.Config.MinPlayers())
		return
	}

	ids := make([]string, 0, len(r.doc.Players))
	for id := range r.doc.Players {
		ids = append(ids, id)
	}
	r.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	for i, id := range ids {
		p := r.doc.Players[id]
		if i < r.doc.Config.SpyCount {
			p.Role = game.RoleSpy
		} else {
			p.Role = game.RoleVillager
		}
		p.Eliminated = false
		p.Vote = ""
	}

	r.doc.Game = game.GameState{
		Status:    game.StatusPlaying,
		StartedAt: nowMillis(),
	}
	r.bumpGeneration()

	log.Printf("🎮 房间 %s 开局：%d 人，%d 个卧底", r.doc.ID, len(ids), r.doc.Config.SpyCount)
}

// applyStartVoting 进入投票：清空所有人的票，记录投票开始时间
func (r *Room) applyStartVoting() {
	status := r.doc.Game.Status
	if status != game.StatusPlaying && status != game.StatusDiscussion {
		return
	}

	for _, p := range r.doc.Players {
		p.Vote = ""
	}
	r.doc.Game.Status = game.StatusVoting
	r.doc.Game.VoteStartedAt = nowMillis()
	gen := r.bumpGeneration()

	// 投票截止由房间协程兜底开票；客户端倒计时归零的 resolve_vote 是冗余触发。
	// 时限以房主在房间配置里设置的为准，而不是服务端默认值。
	r.scheduleAfter(time.Duration(r.doc.Config.VoteDuration)*time.Second, gen, r.applyResolveVote)

	log.Printf("🗳️ 房间 %s 开始投票，时限 %ds", r.doc.ID, r.doc.Config.VoteDuration)
}

// applyVote 投票
func (r *Room) applyVote(voterID, targetID string) error {
	if r.doc.Game.Status != game.StatusVoting {
		return apperrors.ErrGameNotStart
	}
	voter, ok := r.doc.Players[voterID]
	if !ok || voter.Eliminated {
		return apperrors.ErrNotInRoom
	}
	target, ok := r.doc.Players[targetID]
	if !ok || target.Eliminated || targetID == voterID {
		return apperrors.ErrInvalidVoteTarget
	}
	if !r.doc.Config.AllowVoteChange && voter.Vote != "" {
		return apperrors.ErrVoteChangeDenied
	}

	voter.Vote = targetID
	return nil
}

// applyResolveVote 开票。状态不再是 voting 时直接返回：
// 重复触发（多个客户端倒计时同时归零）只会有一次生效。
func (r *Room) applyResolveVote() {
	if r.doc.Game.Status != game.StatusVoting {
		return
	}

	outcome := game.ResolveTally(r.doc.Players)

	// 得票最高者可能在结算前已离开房间，此时同样按平局处理
	eliminated := r.doc.Players[outcome.EliminatedID]
	if outcome.IsDraw || eliminated == nil {
		r.doc.Game.Status = game.StatusDraw
		r.doc.Game.RevealedPlayer = nil
		gen := r.bumpGeneration()
		r.scheduleAfter(r.cfg.DrawDelayTime(), gen, r.applyEndReveal)
		log.Printf("🤝 房间 %s 投票平局，无人出局", r.doc.ID)
		return
	}

	eliminated.Eliminated = true
	revealed := &game.RevealedPlayer{ID: eliminated.ID, Role: eliminated.Role}

	log.Printf("❌ 房间 %s 玩家 %s 被投出（%s）", r.doc.ID, eliminated.Name, eliminated.Role)

	if winner, decided := game.EvaluateWin(r.doc.Players); decided {
		r.doc.Game.Status = game.StatusGameOver
		r.doc.Game.Winner = winner
		r.doc.Game.RevealedPlayer = revealed
		r.bumpGeneration()
		log.Printf("🏁 房间 %s 游戏结束，%s 获胜", r.doc.ID, winner)
		return
	}

	r.doc.Game.Status = game.StatusReveal
	r.doc.Game.RevealedPlayer = revealed
	gen := r.bumpGeneration()
	r.scheduleAfter(r.cfg.RevealDelayTime(), gen, r.applyEndReveal)
}

// applyEndReveal 揭示/平局画面结束，回到讨论阶段（词卡不再展示）
func (r *Room) applyEndReveal() {
	status := r.doc.Game.Status
	if status != game.StatusReveal && status != game.StatusDraw {
		return
	}
	r.doc.Game.Status = game.StatusDiscussion
	r.doc.Game.RevealedPlayer = nil
	r.bumpGeneration()
}

// applyGuessWord 猜对方阵营的词：猜中本方胜，猜错对方胜。
// heroID 记录猜词者，无论对错。
func (r *Room) applyGuessWord(playerID, guess string) error {
	status := r.doc.Game.Status
	if status != game.StatusPlaying && status != game.StatusDiscussion {
		return apperrors.ErrInvalidGuess
	}
	player, ok := r.doc.Players[playerID]
	if !ok || player.Role == game.RoleNone || player.Eliminated {
		return apperrors.ErrInvalidGuess
	}

	// 目标词是对方阵营的词
	var targetWord string
	var winner, loser game.Winner
	if player.Role == game.RoleSpy {
		targetWord = r.doc.WordPair.VillagerWord
		winner, loser = game.WinnerSpy, game.WinnerVillager
	} else {
		targetWord = r.doc.WordPair.SpyWord
		winner, loser = game.WinnerVillager, game.WinnerSpy
	}

	correct := strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(targetWord))

	r.doc.Game.Status = game.StatusGameOver
	r.doc.Game.HeroID = playerID
	if correct {
		r.doc.Game.Winner = winner
		r.doc.Game.EndReason = game.EndReasonGuessedCorrect
		log.Printf("🎯 房间 %s 玩家 %s 猜中对方词，%s 获胜", r.doc.ID, player.Name, winner)
	} else {
		r.doc.Game.Winner = loser
		r.doc.Game.EndReason = game.EndReasonGuessedWrong
		log.Printf("💥 房间 %s 玩家 %s 猜错，%s 获胜", r.doc.ID, player.Name, loser)
	}
	r.bumpGeneration()
	return nil
}

// applyBackToLobby 游戏结束后回大厅：换新词、清理离线玩家、重置在线玩家。
// 只有房主能触发。
func (r *Room) applyBackToLobby(callerID string) {
	if !r.doc.IsHost(callerID) || r.doc.Game.Status != game.StatusGameOver {
		return
	}

	pair, used := r.selector.Pick(r.doc.UsedWordIndices)
	r.doc.WordPair = pair
	r.doc.UsedWordIndices = used

	for id, p := range r.doc.Players {
		if !p.IsOnline {
			// 掉线的残留身份在回大厅时统一清理
			delete(r.doc.Players, id)
			delete(r.clients, id)
			continue
		}
		p.Role = game.RoleNone
		p.Vote = ""
		p.Eliminated = false
	}

	r.doc.Game = game.GameState{Status: game.StatusLobby}
	r.bumpGeneration()

	log.Printf("🏠 房间 %s 回到大厅，剩余 %d 人", r.doc.ID, len(r.doc.Players))
}

// applyResetRoom 房主强制重置回大厅（不换词，不清人）
func (r *Room) applyResetRoom(callerID string) {
	if !r.doc.IsHost(callerID) {
		return
	}

	for _, p := range r.doc.Players {
		p.Role = game.RoleNone
		p.Vote = ""
		p.Eliminated = false
	}
	r.doc.Game = game.GameState{Status: game.StatusLobby}
	r.bumpGeneration()

	log.Printf("🔄 房间 %s 已重置回大厅", r.doc.ID)
}

// checkViability 统一的存活策略：对局中每次状态变化后重查。
//  1. 未被淘汰的玩家不足 2 人 -> 直接结束，无人获胜
//  2. 否则按当前名单重新判定胜负（有人退出可能直接分出胜负）
func (r *Room) checkViability() {
	status := r.doc.Game.Status
	if status != game.StatusPlaying && status != game.StatusVoting && status != game.StatusDiscussion {
		return
	}

	if len(r.doc.ActivePlayers()) < 2 {
		r.doc.Game.Status = game.StatusGameOver
		r.doc.Game.Winner = game.WinnerNone
		r.doc.Game.EndReason = game.EndReasonNotEnoughPlayers
		r.bumpGeneration()
		log.Printf("🧟 房间 %s 剩余人数不足，游戏结束", r.doc.ID)
		return
	}

	if winner, decided := game.EvaluateWin(r.doc.Players); decided {
		r.doc.Game.Status = game.StatusGameOver
		r.doc.Game.Winner = winner
		r.doc.Game.EndReason = game.EndReasonPlayerLeft
		r.bumpGeneration()
		log.Printf("🏁 房间 %s 因有人退出提前结束，%s 获胜", r.doc.ID, winner)
	}
}
