package game

import "sort"

// VoteCount 某候选人的得票数
type VoteCount struct {
	TargetID string
	Count    int
}

// TallyVotes 计票：每个未被淘汰且已投票的玩家记一票
func TallyVotes(players map[string]*Player) map[string]int {
	tally := make(map[string]int)
	for _, p := range players {
		if !p.Eliminated && p.Vote != "" {
			tally[p.Vote]++
		}
	}
	return tally
}

// SortTally 将计票结果按得票数降序排列，得票相同按 ID 升序。
// 排序必须是确定性的：多个客户端对同一快照计票要得到同一结论。
func SortTally(tally map[string]int) []VoteCount {
	sorted := make([]VoteCount, 0, len(tally))
	for id, count := range tally {
		sorted = append(sorted, VoteCount{TargetID: id, Count: count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].TargetID < sorted[j].TargetID
	})
	return sorted
}

// VoteOutcome 开票结论
type VoteOutcome struct {
	IsDraw       bool
	EliminatedID string // IsDraw 为 false 时有效
	Tally        []VoteCount
}

// ResolveTally 根据计票结果判定淘汰或平局：
//   - 无人投票 -> 平局
//   - 最高票并列 -> 平局（绝不在并列者中任选其一）
//   - 否则淘汰唯一的最高票者
func ResolveTally(players map[string]*Player) VoteOutcome {
	sorted := SortTally(TallyVotes(players))

	if len(sorted) == 0 {
		return VoteOutcome{IsDraw: true}
	}
	if len(sorted) > 1 && sorted[0].Count == sorted[1].Count {
		return VoteOutcome{IsDraw: true, Tally: sorted}
	}
	return VoteOutcome{EliminatedID: sorted[0].TargetID, Tally: sorted}
}
