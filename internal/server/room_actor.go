package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/undercover-games/spy-villagers/internal/apperrors"
	"github.com/undercover-games/spy-villagers/internal/game"
	"github.com/undercover-games/spy-villagers/internal/protocol"
	"github.com/undercover-games/spy-villagers/internal/server/types"
	"github.com/undercover-games/spy-villagers/internal/storage"
)

// 每个房间由一个协程独占驱动：所有变更都经 commands 通道串行执行，
// 客户端之间不存在读-改-写竞争（代替源头设计里"谁都能直接写共享文档"）。
// 状态前置条件依然保留，迟到或重复的命令自然变成空操作。

// run 房间协程主循环。done 关闭后排队中的命令不再执行，
// 因此 doSync 可以据此准确判断命令是否真正跑过。
func (r *Room) run() {
	for {
		select {
		case <-r.done:
			return
		default:
		}
		select {
		case fn := <-r.commands:
			fn()
		case <-r.done:
			return
		}
	}
}

// do 异步投递一条命令
func (r *Room) do(fn func()) {
	select {
	case r.commands <- fn:
	case <-r.done:
		// 房间已解散，丢弃
	}
}

// doSync 投递命令并等待执行完成，返回命令是否真正执行。
// 解散发生在房间协程内的某条命令里，和其他命令串行，
// 因此 done 关闭时再查一次 doneCh 即可消除两个分支同时就绪的歧义。
func (r *Room) doSync(fn func()) bool {
	doneCh := make(chan struct{})
	r.do(func() {
		fn()
		close(doneCh)
	})
	select {
	case <-doneCh:
		return true
	case <-r.done:
		select {
		case <-doneCh:
			return true
		default:
			return false
		}
	}
}

// bumpGeneration 状态变更计数。定时器在调度时捕获当前代数，
// 触发时代数不符即视为过期，直接丢弃（防止重置后旧定时器乱入）。
func (r *Room) bumpGeneration() uint64 {
	r.generation++
	return r.generation
}

// scheduleAfter 调度一个受代数保护的延时命令
func (r *Room) scheduleAfter(d time.Duration, gen uint64, fn func()) {
	time.AfterFunc(d, func() {
		r.do(func() {
			if r.generation != gen {
				return // 过期定时器
			}
			fn()
			r.afterMutation()
		})
	})
}

// afterMutation 每次变更后的收尾：存活检查、快照广播、持久化。
// 必须在房间协程内调用。
func (r *Room) afterMutation() {
	if r.closed {
		return
	}
	r.lastActivity = time.Now()

	// 对局中每次变化都复查一次存活条件（房主掉线、集体掉线
	// 等场景不需要专门的服务端轮询，下一次变更自然触发）
	r.checkViability()

	r.broadcastSnapshot()
}

// broadcastSnapshot 向房间内所有连接推送最新快照，并异步写入 Redis。
// JSON 序列化在房间协程内完成，之后只传递字节，避免并发读文档。
func (r *Room) broadcastSnapshot() {
	msg := protocol.MustNewMessage(protocol.MsgRoomUpdate, protocol.RoomUpdatePayload{Room: r.doc})
	for _, client := range r.clients {
		client.SendMessage(msg)
	}

	if r.manager != nil && r.manager.store != nil {
		data, err := json.Marshal(r.doc)
		if err != nil {
			log.Printf("序列化房间 %s 快照失败: %v", r.doc.ID, err)
			return
		}
		// 投递给本房间唯一的落库协程，写入顺序即提交顺序；
		// 队列打满时丢最旧的一份，保序且最终态不丢
		select {
		case r.saves <- data:
		default:
			select {
			case <-r.saves:
			default:
			}
			r.saves <- data
		}
	}
}

// persistLoop 按提交顺序把快照写入 Redis。房间协程只序列化并投递字节，
// SET 和 PUBLISH 都串行发生在这一个协程里，后提交的快照不会被先写。
func (r *Room) persistLoop(store *storage.RedisStore) {
	for {
		select {
		case data := <-r.saves:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := store.SaveRoom(ctx, r.doc.ID, data); err != nil {
				log.Printf("保存房间 %s 到 Redis 失败: %v", r.doc.ID, err)
			}
			cancel()
		case <-r.done:
			return
		}
	}
}

// closeRoom 解散房间。必须在房间协程内调用。
func (r *Room) closeRoom(reason string) {
	if r.closed {
		return
	}
	r.closed = true

	if reason != "" {
		msg := protocol.MustNewMessage(protocol.MsgRoomClosed, protocol.RoomClosedPayload{
			RoomID: r.doc.ID,
			Reason: reason,
		})
		for _, client := range r.clients {
			client.SendMessage(msg)
			client.SetRoom("")
			client.SetPlayerID("")
		}
	}
	r.clients = make(map[string]types.ClientInterface)

	close(r.done)
	if r.manager != nil {
		r.manager.removeRoom(r.doc.ID)
	}
	log.Printf("🏠 房间 %s 已解散", r.doc.ID)
}

// --- 对外命令接口（任意协程可调用） ---

// Join 加入房间，返回正式玩家 ID（认领时沿用旧身份）
func (r *Room) Join(client types.ClientInterface, name string) (string, error) {
	var playerID string
	var err error
	if !r.doSync(func() {
		playerID, err = r.applyJoin(client, name)
		if err == nil {
			r.afterMutation()
		}
	}) {
		// 房间在命令执行前已解散
		return "", apperrors.ErrRoomNotFound
	}
	return playerID, err
}

// Leave 离开房间
func (r *Room) Leave(playerID string) {
	r.do(func() {
		r.applyLeave(playerID)
		r.afterMutation()
	})
}

// SetOffline 连接断开，标记离线
func (r *Room) SetOffline(playerID string) {
	r.do(func() {
		r.applySetOffline(playerID)
		r.afterMutation()
	})
}

// SetOnline 重报在线
func (r *Room) SetOnline(playerID string) {
	r.do(func() {
		r.applySetOnline(playerID)
		r.afterMutation()
	})
}

// UpdateSettings 修改房间配置
func (r *Room) UpdateSettings(callerID string, cfg game.RoomConfig) {
	r.do(func() {
		r.applyUpdateSettings(callerID, cfg)
		r.afterMutation()
	})
}

// UpdateAvatar 修改头像
func (r *Room) UpdateAvatar(playerID, avatar string) {
	r.do(func() {
		r.applyUpdateAvatar(playerID, avatar)
		r.afterMutation()
	})
}

// StartGame 开始游戏
func (r *Room) StartGame(callerID string) {
	r.do(func() {
		r.applyStartGame(callerID)
		r.afterMutation()
	})
}

// StartVoting 发起投票
func (r *Room) StartVoting() {
	r.do(func() {
		r.applyStartVoting()
		r.afterMutation()
	})
}

// Vote 投票
func (r *Room) Vote(voterID, targetID string) error {
	var err error
	if !r.doSync(func() {
		err = r.applyVote(voterID, targetID)
		if err == nil {
			r.afterMutation()
		}
	}) {
		return apperrors.ErrRoomNotFound
	}
	return err
}

// ResolveVote 开票（幂等，状态不是 voting 时为空操作）
func (r *Room) ResolveVote() {
	r.do(func() {
		r.applyResolveVote()
		r.afterMutation()
	})
}

// EndReveal 结束揭示/平局画面
func (r *Room) EndReveal() {
	r.do(func() {
		r.applyEndReveal()
		r.afterMutation()
	})
}

// GuessWord 猜词
func (r *Room) GuessWord(playerID, guess string) error {
	var err error
	if !r.doSync(func() {
		err = r.applyGuessWord(playerID, guess)
		if err == nil {
			r.afterMutation()
		}
	}) {
		return apperrors.ErrRoomNotFound
	}
	return err
}

// BackToLobby 换词回大厅
func (r *Room) BackToLobby(callerID string) {
	r.do(func() {
		r.applyBackToLobby(callerID)
		r.afterMutation()
	})
}

// ResetRoom 重置回大厅
func (r *Room) ResetRoom(callerID string) {
	r.do(func() {
		r.applyResetRoom(callerID)
		r.afterMutation()
	})
}

// CheckViability 显式触发一次存活检查
func (r *Room) CheckViability() {
	r.do(func() {
		r.afterMutation()
	})
}

// Snapshot 同步取一份文档快照（深拷贝经 JSON，避免外部读到可变状态）
func (r *Room) Snapshot() *game.Room {
	var snapshot *game.Room
	r.doSync(func() {
		data, err := json.Marshal(r.doc)
		if err != nil {
			return
		}
		var copied game.Room
		if err := json.Unmarshal(data, &copied); err != nil {
			return
		}
		snapshot = &copied
	})
	return snapshot
}

// Status 当前状态
func (r *Room) Status() game.Status {
	var status game.Status
	r.doSync(func() {
		status = r.doc.Game.Status
	})
	return status
}

// ID 房间号
func (r *Room) ID() string {
	return r.doc.ID
}
