package game

import (
	"sort"
	"strings"
)

// Status 游戏状态机状态
type Status string

const (
	StatusLobby      Status = "lobby"      // 大厅等待
	StatusPlaying    Status = "playing"    // 看词描述阶段
	StatusVoting     Status = "voting"     // 投票阶段
	StatusReveal     Status = "reveal"     // 淘汰揭示
	StatusDraw       Status = "draw"       // 平局
	StatusDiscussion Status = "discussion" // 讨论阶段（不再展示词卡）
	StatusGameOver   Status = "game_over"  // 游戏结束
)

// IsActive 是否处于对局进行中的状态
func (s Status) IsActive() bool {
	switch s {
	case StatusPlaying, StatusVoting, StatusReveal, StatusDraw, StatusDiscussion:
		return true
	}
	return false
}

// Role 玩家阵营
type Role string

const (
	RoleSpy      Role = "spy"      // 卧底
	RoleVillager Role = "villager" // 平民
	RoleNone     Role = ""         // 大厅中尚未分配
)

// Winner 获胜方
type Winner string

const (
	WinnerSpy      Winner = "spy"
	WinnerVillager Winner = "villager"
	WinnerNone     Winner = "none" // 无人获胜（人数不足解散）
)

// EndReason 游戏结束原因
type EndReason string

const (
	EndReasonNotEnoughPlayers EndReason = "not_enough_players" // 剩余人数不足
	EndReasonPlayerLeft       EndReason = "player_left"        // 有人退出导致提前分出胜负
	EndReasonGuessedCorrect   EndReason = "guessed_correct"    // 猜中对方词语
	EndReasonGuessedWrong     EndReason = "guessed_wrong"      // 猜错对方词语
)

// WordPair 本轮词语对
type WordPair struct {
	VillagerWord string `json:"villager_word"`
	SpyWord      string `json:"spy_word"`
}

// WordFor 返回某阵营看到的词
func (wp WordPair) WordFor(role Role) string {
	if role == RoleSpy {
		return wp.SpyWord
	}
	return wp.VillagerWord
}

// RoomConfig 房间配置
type RoomConfig struct {
	SpyCount        int  `json:"spy_count"`         // 卧底数量，>= 1
	AllowVoteChange bool `json:"allow_vote_change"` // 是否允许改票
	VoteDuration    int  `json:"vote_duration"`     // 投票倒计时（秒）
}

// MinPlayers 开局所需最少人数
func (c RoomConfig) MinPlayers() int {
	return c.SpyCount*2 + 1
}

// RevealedPlayer 被淘汰揭示的玩家
type RevealedPlayer struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// GameState 状态机子记录
type GameState struct {
	Status         Status          `json:"status"`
	StartedAt      int64           `json:"started_at,omitempty"`      // 毫秒时间戳
	VoteStartedAt  int64           `json:"vote_started_at,omitempty"` // 毫秒时间戳
	RevealedPlayer *RevealedPlayer `json:"revealed_player,omitempty"`
	Winner         Winner          `json:"winner,omitempty"`
	EndReason      EndReason       `json:"end_reason,omitempty"`
	HeroID         string          `json:"hero_id,omitempty"` // 猜词者（无论对错）
}

// Player 房间中的玩家
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role,omitempty"`
	Eliminated bool   `json:"eliminated"`
	Vote       string `json:"vote,omitempty"` // 投给谁，空表示未投
	IsOnline   bool   `json:"is_online"`
	JoinedAt   int64  `json:"joined_at"` // 毫秒时间戳
	JoinSeq    int    `json:"join_seq"`  // 加入序号，JoinedAt 相同时的平局裁决
	LastActive int64  `json:"last_active,omitempty"`
	Avatar     string `json:"avatar,omitempty"` // 仅展示用
}

// Room 房间文档（复制到 Redis 与所有客户端的唯一共享状态）
type Room struct {
	ID              string             `json:"id"` // 8 位数字房间号
	HostID          string             `json:"host_id"`
	MaxPlayers      int                `json:"max_players"`
	WordPair        WordPair           `json:"word_pair"`
	UsedWordIndices []int              `json:"used_word_indices"`
	Config          RoomConfig         `json:"config"`
	Game            GameState          `json:"game"`
	Players         map[string]*Player `json:"players"`
	NextJoinSeq     int                `json:"next_join_seq"`
}

// NormalizeName 归一化玩家名（大小写不敏感的重连键）
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindPlayerByName 按名字（大小写不敏感）查找玩家，找不到返回 nil
func (r *Room) FindPlayerByName(name string) *Player {
	clean := NormalizeName(name)
	for _, p := range r.Players {
		if NormalizeName(p.Name) == clean {
			return p
		}
	}
	return nil
}

// OrderedPlayerIDs 按加入时间（JoinedAt，相同则按 JoinSeq）排序的玩家 ID 列表
func (r *Room) OrderedPlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.Players[ids[i]], r.Players[ids[j]]
		if a.JoinedAt != b.JoinedAt {
			return a.JoinedAt < b.JoinedAt
		}
		return a.JoinSeq < b.JoinSeq
	})
	return ids
}

// ActivePlayers 未被淘汰的玩家
func (r *Room) ActivePlayers() []*Player {
	var active []*Player
	for _, p := range r.Players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

// IsHost 判断玩家是否为房主
func (r *Room) IsHost(playerID string) bool {
	return r.HostID == playerID
}
