package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/undercover-games/spy-villagers/internal/game"
)

// View 渲染当前界面
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.phase {
	case PhaseConnecting:
		content = m.connectingView()
	case PhaseHome:
		content = m.homeView()
	case PhaseNameInput, PhaseRoomInput, PhaseJoinName:
		content = m.inputView()
	case PhaseInRoom:
		content = m.roomView()
	}

	return docStyle.Render(content)
}

func (m *Model) connectingView() string {
	var sb string
	if m.errMsg != "" {
		sb = errorStyle.Render(m.errMsg)
	} else {
		sb = "正在连接服务器..."
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb)
}

func (m *Model) homeView() string {
	var b strings.Builder
	b.WriteString(titleStyle("🕵️  谁是卧底"))
	b.WriteString("\n\n")

	options := []string{"创建房间", "加入房间", "退出"}
	for i, opt := range options {
		if i == m.cursor {
			b.WriteString(selectedMark + opt + "\n")
		} else {
			b.WriteString("  " + opt + "\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}

	b.WriteString(hintStyle.Render("\n↑/↓ 选择 · Enter 确认 · Q 退出"))
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) inputView() string {
	var b strings.Builder
	switch m.phase {
	case PhaseNameInput:
		b.WriteString(titleStyle("创建房间"))
	case PhaseRoomInput:
		b.WriteString(titleStyle("加入房间"))
	case PhaseJoinName:
		b.WriteString(titleStyle(fmt.Sprintf("加入房间 %s", m.pendingRoom)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.input.View())

	if m.errMsg != "" {
		b.WriteString("\n\n" + errorStyle.Render(m.errMsg))
	}

	b.WriteString(hintStyle.Render("\nEnter 确认 · ESC 返回"))
	return b.String()
}

// roomView 房间内视图，跟随快照状态机
func (m *Model) roomView() string {
	if m.room == nil {
		return "正在进入房间..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	switch m.room.Game.Status {
	case game.StatusLobby:
		b.WriteString(m.lobbyView())
	case game.StatusPlaying, game.StatusDiscussion:
		b.WriteString(m.playingView())
	case game.StatusVoting:
		b.WriteString(m.votingView())
	case game.StatusReveal:
		b.WriteString(m.revealView())
	case game.StatusDraw:
		b.WriteString(m.drawView())
	case game.StatusGameOver:
		b.WriteString(m.gameOverView())
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) headerView() string {
	status := map[game.Status]string{
		game.StatusLobby:      "等待开始",
		game.StatusPlaying:    "描述阶段",
		game.StatusVoting:     "投票中",
		game.StatusReveal:     "揭示",
		game.StatusDraw:       "平局",
		game.StatusDiscussion: "讨论阶段",
		game.StatusGameOver:   "游戏结束",
	}[m.room.Game.Status]

	return titleStyle(fmt.Sprintf("房间 %s · %s", m.room.ID, status))
}

// playerLine 单个玩家的展示行
func (m *Model) playerLine(p *game.Player, showVoteDot bool) string {
	var icons []string
	if m.room.IsHost(p.ID) {
		icons = append(icons, HostIcon)
	}
	if p.Eliminated {
		icons = append(icons, DeadIcon)
	}
	if !p.IsOnline {
		icons = append(icons, OfflineIcon)
	}
	if showVoteDot && p.Vote != "" {
		icons = append(icons, VotedIcon)
	}

	name := p.Name
	if p.Avatar != "" {
		name = p.Avatar + " " + name
	}
	if p.ID == m.client.PlayerID {
		name += " (我)"
	}

	line := name
	if len(icons) > 0 {
		line += " " + strings.Join(icons, " ")
	}
	if p.Eliminated || !p.IsOnline {
		return dimStyle.Render(line)
	}
	return line
}

func (m *Model) lobbyView() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("玩家 (%d/%d):\n", len(m.room.Players), m.room.MaxPlayers))
	for _, id := range m.room.OrderedPlayerIDs() {
		b.WriteString("  " + m.playerLine(m.room.Players[id], false) + "\n")
	}

	cfg := m.room.Config
	voteChange := "允许"
	if !cfg.AllowVoteChange {
		voteChange = "禁止"
	}
	b.WriteString(fmt.Sprintf("\n设置: 卧底 ×%d · 改票 %s · 投票 %d 秒\n", cfg.SpyCount, voteChange, cfg.VoteDuration))
	b.WriteString(dimStyle.Render(fmt.Sprintf("至少需要 %d 名玩家开局\n", cfg.MinPlayers())))

	if m.isHost() {
		b.WriteString(hintStyle.Render("\nS 开始 · +/- 卧底数 · C 切换改票 · Q 离开"))
	} else {
		b.WriteString(hintStyle.Render("\n等待房主开始 · Q 离开"))
	}
	return b.String()
}

// wordCard 词卡。讨论阶段不再展示词，防止屏幕被偷看。
func (m *Model) wordCard() string {
	me := m.me()
	if me == nil || me.Role == game.RoleNone {
		return ""
	}
	if m.room.Game.Status == game.StatusDiscussion {
		return boxStyle.Render("词卡已收起，凭记忆讨论")
	}
	word := m.room.WordPair.WordFor(me.Role)
	return wordStyle.Render(fmt.Sprintf("你的词: %s", word))
}

func (m *Model) playingView() string {
	var b strings.Builder

	b.WriteString(m.wordCard())
	b.WriteString("\n\n玩家:\n")
	for _, id := range m.room.OrderedPlayerIDs() {
		b.WriteString("  " + m.playerLine(m.room.Players[id], false) + "\n")
	}

	if m.guessing {
		b.WriteString("\n" + promptStyle.Render(m.input.View()))
		b.WriteString(hintStyle.Render("\nEnter 提交 · ESC 取消"))
		return b.String()
	}

	me := m.me()
	hint := "\nV 发起投票 · Q 离开"
	if me != nil && me.Role == game.RoleSpy && !me.Eliminated {
		hint = "\nV 发起投票 · G 猜词翻盘 · Q 离开"
	}
	b.WriteString(hintStyle.Render(hint))
	return b.String()
}

func (m *Model) votingView() string {
	var b strings.Builder

	remaining := m.voteRemaining()
	b.WriteString(noticeStyle.Render(fmt.Sprintf("⏱  投票倒计时 %d 秒", remaining)))
	b.WriteString("\n\n")

	me := m.me()
	for i, p := range m.voteCandidates() {
		line := fmt.Sprintf("%d. %s", i+1, m.playerLine(p, true))
		if me != nil && me.Vote == p.ID {
			line += noticeStyle.Render("  ← 我的票")
		}
		b.WriteString("  " + line + "\n")
	}

	hint := "\n按数字投票 · Q 离开"
	if me != nil && me.Vote != "" && !m.room.Config.AllowVoteChange {
		hint = "\n已投票（本局禁止改票） · Q 离开"
	}
	if m.isHost() {
		hint += " · R 提前结算"
	}
	b.WriteString(hintStyle.Render(hint))
	return b.String()
}

func (m *Model) revealView() string {
	rp := m.room.Game.RevealedPlayer
	if rp == nil {
		return "..."
	}

	name := rp.ID
	if p, ok := m.room.Players[rp.ID]; ok {
		name = p.Name
	}

	roleText := VillagerIcon + " 平民"
	if rp.Role == game.RoleSpy {
		roleText = SpyIcon + " 卧底"
	}

	card := boxStyle.Render(fmt.Sprintf("%s 被投出\n\n身份: %s", name, roleText))
	return card + hintStyle.Render("\nEnter 继续")
}

func (m *Model) drawView() string {
	card := boxStyle.Render("😶 平局，无人出局\n\n继续讨论")
	return card + hintStyle.Render("\nEnter 继续")
}

func (m *Model) gameOverView() string {
	var b strings.Builder
	g := m.room.Game

	switch g.Winner {
	case game.WinnerSpy:
		b.WriteString(titleStyle(SpyIcon + " 卧底获胜！"))
	case game.WinnerVillager:
		b.WriteString(titleStyle(VillagerIcon + " 平民获胜！"))
	default:
		b.WriteString(titleStyle("游戏结束"))
	}
	b.WriteString("\n")

	switch g.EndReason {
	case game.EndReasonGuessedCorrect:
		if p, ok := m.room.Players[g.HeroID]; ok {
			b.WriteString(fmt.Sprintf("%s 猜中了平民词！\n", p.Name))
		}
	case game.EndReasonGuessedWrong:
		if p, ok := m.room.Players[g.HeroID]; ok {
			b.WriteString(fmt.Sprintf("%s 猜词失败\n", p.Name))
		}
	case game.EndReasonNotEnoughPlayers:
		b.WriteString("剩余人数不足，游戏解散\n")
	case game.EndReasonPlayerLeft:
		b.WriteString("有玩家退出，提前分出胜负\n")
	}

	if m.didWin(m.room) {
		b.WriteString("\n" + winStyle.Render("你赢了 🎉") + "\n")
	} else if me := m.me(); me != nil && me.Role != game.RoleNone && g.Winner != game.WinnerNone {
		b.WriteString("\n" + loseStyle.Render("你输了") + "\n")
	}

	// 复盘：揭示全部身份与词语
	b.WriteString(fmt.Sprintf("\n本轮词语: 平民「%s」 卧底「%s」\n\n", m.room.WordPair.VillagerWord, m.room.WordPair.SpyWord))
	for _, id := range m.room.OrderedPlayerIDs() {
		p := m.room.Players[id]
		icon := VillagerIcon
		if p.Role == game.RoleSpy {
			icon = SpyIcon
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", icon, m.playerLine(p, false)))
	}

	if m.isHost() {
		b.WriteString(hintStyle.Render("\nB 再来一局 · R 重置房间 · Q 离开"))
	} else {
		b.WriteString(hintStyle.Render("\n等待房主开启下一局 · Q 离开"))
	}
	return b.String()
}

// statusLine 底部状态栏：延迟与重连提示
func (m *Model) statusLine() string {
	var parts []string
	if m.client.IsReconnecting() {
		parts = append(parts, noticeStyle.Render("🔄 正在重连..."))
	} else if !m.reconnectedAt.IsZero() && m.now.Sub(m.reconnectedAt) < 3*time.Second {
		parts = append(parts, noticeStyle.Render("✅ 已重新连接"))
	}
	if m.latency > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("延迟 %dms", m.latency)))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\n" + strings.Join(parts, "  ")
}
