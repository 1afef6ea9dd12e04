// Package words 提供每轮不重复的词语对选取。
package words

import (
	"math/rand"

	"github.com/undercover-games/spy-villagers/internal/config"
	"github.com/undercover-games/spy-villagers/internal/game"
)

// DefaultPool 内置词库
var DefaultPool = []game.WordPair{
	{VillagerWord: "咖啡", SpyWord: "奶茶"},
	{VillagerWord: "医院", SpyWord: "诊所"},
	{VillagerWord: "超人", SpyWord: "蝙蝠侠"},
	{VillagerWord: "微信", SpyWord: "QQ"},
	{VillagerWord: "钢琴", SpyWord: "吉他"},
	{VillagerWord: "火锅", SpyWord: "麻辣烫"},
	{VillagerWord: "地铁", SpyWord: "公交车"},
	{VillagerWord: "足球", SpyWord: "篮球"},
}

// Selector 词语对选择器，记录词库并保证用完一轮前不重复
type Selector struct {
	pool []game.WordPair
	rng  *rand.Rand
}

// NewSelector 创建选择器，pool 为空时用内置词库
func NewSelector(pool []game.WordPair, rng *rand.Rand) *Selector {
	if len(pool) == 0 {
		pool = DefaultPool
	}
	return &Selector{pool: pool, rng: rng}
}

// FromConfig 从配置的词库构建选择器
func FromConfig(pairs []config.WordPair, rng *rand.Rand) *Selector {
	pool := make([]game.WordPair, 0, len(pairs))
	for _, p := range pairs {
		pool = append(pool, game.WordPair{VillagerWord: p.Villager, SpyWord: p.Spy})
	}
	return NewSelector(pool, rng)
}

// PoolSize 词库大小
func (s *Selector) PoolSize() int {
	return len(s.pool)
}

// Pick 选取一个未用过的词语对，并返回更新后的已用下标集合。
// 词库用尽时重置，已用集合只保留本次选中的下标。
func (s *Selector) Pick(used []int) (game.WordPair, []int) {
	usedSet := make(map[int]bool, len(used))
	for _, i := range used {
		if i >= 0 && i < len(s.pool) {
			usedSet[i] = true
		}
	}

	var candidates []int
	for i := range s.pool {
		if !usedSet[i] {
			candidates = append(candidates, i)
		}
	}

	// 词库用尽，重新开始一轮
	if len(candidates) == 0 {
		idx := s.rng.Intn(len(s.pool))
		return s.pool[idx], []int{idx}
	}

	idx := candidates[s.rng.Intn(len(candidates))]
	return s.pool[idx], append(append([]int(nil), used...), idx)
}
