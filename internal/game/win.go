package game

// EvaluateWin 胜负判定（纯函数，只看未被淘汰的玩家）
//   - 卧底全部出局 -> 平民胜
//   - 卧底人数 >= 平民人数 -> 卧底胜（讨论和投票已无法翻盘）
//   - 否则胜负未分，游戏继续
//
// resolveVote 和 checkGameViability 共用同一份判定逻辑。
func EvaluateWin(players map[string]*Player) (Winner, bool) {
	spies, villagers := 0, 0
	for _, p := range players {
		if p.Eliminated {
			continue
		}
		if p.Role == RoleSpy {
			spies++
		} else {
			villagers++
		}
	}

	if spies == 0 {
		return WinnerVillager, true
	}
	if spies >= villagers {
		return WinnerSpy, true
	}
	return "", false
}
