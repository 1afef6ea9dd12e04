package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/undercover-games/spy-villagers/internal/game"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"
	// 房间变更订阅频道前缀（按提交顺序推送每次快照）
	roomChannelPrefix = "room:updates:"

	// 房间数据过期时间
	roomExpiration = 2 * time.Hour
)

// RedisStore 房间文档的持久化与变更推送
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveRoom 保存房间快照并发布到变更频道。
// data 必须是房间文档的 JSON 序列化结果（由房间协程在内部序列化，避免并发读）。
func (rs *RedisStore) SaveRoom(ctx context.Context, roomID string, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	key := roomKeyPrefix + roomID
	if err := rs.client.Set(ctx, key, data, roomExpiration).Err(); err != nil {
		return fmt.Errorf("保存房间数据失败: %w", err)
	}

	// 变更推送与写入同序：同一协程先 Set 后 Publish
	return rs.client.Publish(ctx, roomChannelPrefix+roomID, data).Err()
}

// LoadRoom 从 Redis 加载房间，不存在时返回 (nil, nil)
func (rs *RedisStore) LoadRoom(ctx context.Context, roomID string) (*game.Room, error) {
	key := roomKeyPrefix + roomID
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 房间不存在
		}
		return nil, err
	}

	var room game.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}

	return &room, nil
}

// DeleteRoom 从 Redis 删除房间并广播解散通知
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	key := roomKeyPrefix + roomID
	if err := rs.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	return rs.client.Publish(ctx, roomChannelPrefix+roomID, []byte("null")).Err()
}

// SubscribeRoom 订阅某房间的变更频道
func (rs *RedisStore) SubscribeRoom(ctx context.Context, roomID string) *redis.PubSub {
	return rs.client.Subscribe(ctx, roomChannelPrefix+roomID)
}

// GetAllRoomIDs 获取所有持久化的房间号
func (rs *RedisStore) GetAllRoomIDs(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, roomKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = key[len(roomKeyPrefix):]
	}
	return ids, nil
}
