package server

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/undercover-games/spy-villagers/internal/config"
	"github.com/undercover-games/spy-villagers/internal/game"
	"github.com/undercover-games/spy-villagers/internal/game/words"
	"github.com/undercover-games/spy-villagers/internal/server/types"
	"github.com/undercover-games/spy-villagers/internal/storage"
)

const (
	// 房间号长度（8 位数字）
	roomIDLength = 8
	// 房间号字符集
	roomIDChars = "0123456789"
)

// RoomManager 房间管理器
type RoomManager struct {
	cfg      *config.Config
	store    *storage.RedisStore
	selector *words.Selector
	rng      *rand.Rand

	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(cfg *config.Config, store *storage.RedisStore) *RoomManager {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rm := &RoomManager{
		cfg:      cfg,
		store:    store,
		selector: words.FromConfig(cfg.Words, rng),
		rng:      rng,
		rooms:    make(map[string]*Room),
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// CreateRoom 创建房间，创建者即房主，随词库给出首个词语对
func (rm *RoomManager) CreateRoom(client types.ClientInterface, hostName string) (*Room, string, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	roomID := rm.generateRoomID()
	pair, used := rm.selector.Pick(nil)

	hostID := client.GetID()
	doc := &game.Room{
		ID:              roomID,
		HostID:          hostID,
		MaxPlayers:      rm.cfg.Game.MaxPlayers,
		WordPair:        pair,
		UsedWordIndices: used,
		Config: game.RoomConfig{
			SpyCount:        rm.cfg.Game.DefaultSpyCount,
			AllowVoteChange: true,
			VoteDuration:    rm.cfg.Game.VoteDuration,
		},
		Game:        game.GameState{Status: game.StatusLobby},
		Players:     make(map[string]*game.Player),
		NextJoinSeq: 1,
	}
	doc.Players[hostID] = &game.Player{
		ID:       hostID,
		Name:     hostName,
		IsOnline: true,
		JoinedAt: nowMillis(),
		JoinSeq:  0,
	}

	room := newRoom(doc, &rm.cfg.Game, rm.selector, rm, rand.New(rand.NewSource(rm.rng.Int63())))
	room.clients[hostID] = client
	client.SetPlayerID(hostID)
	client.SetRoom(roomID)

	rm.rooms[roomID] = room
	go room.run()

	// 首个快照落库
	room.do(func() { room.afterMutation() })

	log.Printf("🏠 房间 %s 已创建，房主 %s", roomID, hostName)
	return room, hostID, nil
}

// GetRoom 获取房间，不存在返回 nil
func (rm *RoomManager) GetRoom(roomID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[roomID]
}

// removeRoom 摘除房间并清理持久化数据（由房间协程解散时回调）
func (rm *RoomManager) removeRoom(roomID string) {
	rm.mu.Lock()
	delete(rm.rooms, roomID)
	rm.mu.Unlock()

	if rm.store != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rm.store.DeleteRoom(ctx, roomID); err != nil {
				log.Printf("从 Redis 删除房间 %s 失败: %v", roomID, err)
			}
		}()
	}
}

// RoomCount 当前房间数量
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// ActiveGamesCount 对局进行中的房间数量
func (rm *RoomManager) ActiveGamesCount() int {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.mu.RUnlock()

	count := 0
	for _, room := range rooms {
		if room.Status().IsActive() {
			count++
		}
	}
	return count
}

// generateRoomID 生成未占用的 8 位数字房间号。调用方需持有写锁。
func (rm *RoomManager) generateRoomID() string {
	for {
		id := make([]byte, roomIDLength)
		for i := range id {
			id[i] = roomIDChars[rm.rng.Intn(len(roomIDChars))]
		}
		idStr := string(id)
		if _, exists := rm.rooms[idStr]; !exists {
			return idStr
		}
	}
}

// cleanupLoop 定期清理空闲房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rm.cleanup()
	}
}

// cleanup 让长时间无动静的房间自行解散：大厅和已结束的对局到点即清，
// 没有任何在线连接的房间（全员掉线的对局）无论状态同样回收。
func (rm *RoomManager) cleanup() {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.mu.RUnlock()

	timeout := rm.cfg.Game.RoomIdleTimeoutTime()
	for _, room := range rooms {
		r := room
		r.do(func() {
			if time.Since(r.lastActivity) <= timeout {
				return
			}
			status := r.doc.Game.Status
			if status == game.StatusLobby || status == game.StatusGameOver || len(r.clients) == 0 {
				r.closeRoom("房间长时间无活动，已关闭")
			}
		})
	}
}

// Shutdown 解散所有房间
func (rm *RoomManager) Shutdown() {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.mu.RUnlock()

	for _, room := range rooms {
		r := room
		r.doSync(func() {
			r.closeRoom("服务器关闭")
		})
	}
}
