package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/undercover-games/spy-villagers/internal/game"
)

// handleKey 处理键盘输入。返回 handled=true 时跳过 textinput 更新。
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// 全局按键
	if key == "ctrl+c" {
		m.client.Close()
		return true, tea.Quit
	}

	switch m.phase {
	case PhaseConnecting:
		if key == "esc" {
			return true, tea.Quit
		}
		return true, nil

	case PhaseHome:
		return m.handleHomeKey(key)

	case PhaseNameInput, PhaseRoomInput, PhaseJoinName:
		return m.handleInputKey(key)

	case PhaseInRoom:
		return m.handleRoomKey(key)
	}

	return false, nil
}

func (m *Model) handleHomeKey(key string) (bool, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < 2 {
			m.cursor++
		}
	case "enter", " ":
		switch m.cursor {
		case 0: // 创建房间
			m.phase = PhaseNameInput
			m.input.Reset()
			m.input.Placeholder = "输入昵称"
			m.input.Focus()
		case 1: // 加入房间
			m.phase = PhaseRoomInput
			m.input.Reset()
			m.input.Placeholder = "输入 8 位房间号"
			m.input.Focus()
		case 2: // 退出
			m.client.Close()
			return true, tea.Quit
		}
	case "q", "esc":
		m.client.Close()
		return true, tea.Quit
	}
	return true, nil
}

func (m *Model) handleInputKey(key string) (bool, tea.Cmd) {
	switch key {
	case "esc":
		m.enterHome()
		return true, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return true, nil
		}

		switch m.phase {
		case PhaseNameInput:
			if err := m.client.CreateRoom(value); err != nil {
				m.errMsg = err.Error()
			}
		case PhaseRoomInput:
			m.pendingRoom = value
			m.phase = PhaseJoinName
			m.input.Reset()
			m.input.Placeholder = "输入昵称（断线后用原昵称找回身份）"
		case PhaseJoinName:
			if err := m.client.JoinRoom(m.pendingRoom, value); err != nil {
				m.errMsg = err.Error()
			}
		}
		return true, nil
	}

	// 其余按键交给 textinput
	return false, nil
}

func (m *Model) handleRoomKey(key string) (bool, tea.Cmd) {
	if m.room == nil {
		return true, nil
	}

	// 猜词输入模式优先
	if m.guessing {
		switch key {
		case "esc":
			m.guessing = false
			m.input.Reset()
			m.input.Blur()
			return true, nil
		case "enter":
			guess := strings.TrimSpace(m.input.Value())
			if guess != "" {
				_ = m.client.GuessWord(guess)
			}
			m.guessing = false
			m.input.Reset()
			m.input.Blur()
			return true, nil
		}
		return false, nil
	}

	switch m.room.Game.Status {
	case game.StatusLobby:
		return m.handleLobbyKey(key)
	case game.StatusPlaying, game.StatusDiscussion:
		return m.handlePlayingKey(key)
	case game.StatusVoting:
		return m.handleVotingKey(key)
	case game.StatusReveal, game.StatusDraw:
		if key == "enter" {
			_ = m.client.EndReveal()
		}
		return true, nil
	case game.StatusGameOver:
		return m.handleGameOverKey(key)
	}

	return true, nil
}

func (m *Model) handleLobbyKey(key string) (bool, tea.Cmd) {
	switch key {
	case "s":
		if m.isHost() {
			_ = m.client.StartGame()
		}
	case "+", "=":
		if m.isHost() {
			cfg := m.room.Config
			cfg.SpyCount++
			_ = m.client.UpdateSettings(cfg)
		}
	case "-":
		if m.isHost() && m.room.Config.SpyCount > 1 {
			cfg := m.room.Config
			cfg.SpyCount--
			_ = m.client.UpdateSettings(cfg)
		}
	case "c":
		if m.isHost() {
			cfg := m.room.Config
			cfg.AllowVoteChange = !cfg.AllowVoteChange
			_ = m.client.UpdateSettings(cfg)
		}
	case "q", "esc":
		_ = m.client.LeaveRoom()
		m.enterHome()
	}
	return true, nil
}

func (m *Model) handlePlayingKey(key string) (bool, tea.Cmd) {
	switch key {
	case "v":
		_ = m.client.StartVoting()
	case "g":
		// 卧底猜词：猜中平民词直接分胜负，猜错判负
		me := m.me()
		if me != nil && me.Role == game.RoleSpy && !me.Eliminated {
			m.guessing = true
			m.input.Reset()
			m.input.Placeholder = "输入你猜的平民词"
			m.input.Focus()
		}
	case "q", "esc":
		_ = m.client.LeaveRoom()
		m.enterHome()
	}
	return true, nil
}

func (m *Model) handleVotingKey(key string) (bool, tea.Cmd) {
	// 数字键选择投票目标
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		candidates := m.voteCandidates()
		if idx < len(candidates) {
			_ = m.client.Vote(candidates[idx].ID)
		}
		return true, nil
	}

	switch key {
	case "r":
		if m.isHost() {
			_ = m.client.ResolveVote()
		}
	case "q", "esc":
		_ = m.client.LeaveRoom()
		m.enterHome()
	}
	return true, nil
}

func (m *Model) handleGameOverKey(key string) (bool, tea.Cmd) {
	switch key {
	case "b", "enter":
		if m.isHost() {
			_ = m.client.BackToLobby()
		}
	case "r":
		if m.isHost() {
			_ = m.client.ResetRoom()
		}
	case "q", "esc":
		_ = m.client.LeaveRoom()
		m.enterHome()
	}
	return true, nil
}

// voteCandidates 投票候选：按加入顺序排列的未淘汰玩家
func (m *Model) voteCandidates() []*game.Player {
	var out []*game.Player
	for _, id := range m.room.OrderedPlayerIDs() {
		p := m.room.Players[id]
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}
