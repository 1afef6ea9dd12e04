package ui

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/undercover-games/spy-villagers/internal/game"
	"github.com/undercover-games/spy-villagers/internal/protocol"
	"github.com/undercover-games/spy-villagers/internal/sound"
	"github.com/undercover-games/spy-villagers/internal/transport"
)

// Phase 客户端界面阶段。进入房间后由房间快照的状态机驱动视图。
type Phase int

const (
	PhaseConnecting Phase = iota // 连接服务器中
	PhaseHome                    // 主菜单
	PhaseNameInput               // 创建房间：输入昵称
	PhaseRoomInput               // 加入房间：输入房间号
	PhaseJoinName                // 加入房间：输入昵称
	PhaseInRoom                  // 房间内，视图跟随快照状态
)

// --- tea.Msg ---

type connectedMsg struct{}
type connectionErrorMsg struct{ err error }
type serverMessage struct{ msg *protocol.Message }
type reconnectOKMsg struct{}
type tickMsg time.Time

// Model 在线模式主模型
type Model struct {
	client *transport.Client
	phase  Phase
	errMsg string

	// 房间快照，服务端每次变更后全量推送
	room *game.Room

	// 主菜单选项与输入
	cursor      int
	input       textinput.Model
	pendingRoom string // 加入流程中暂存的房间号

	// 猜词输入模式（卧底在 playing/discussion 阶段开启）
	guessing bool

	// 投票倒计时展示
	now time.Time

	latency      int64
	reconnectMsg chan tea.Msg
	// 最近一次重连成功的时间，状态栏的提示据此在几秒后自动消失
	reconnectedAt time.Time

	soundManager *sound.SoundManager

	width  int
	height int
}

// NewModel 创建在线模型
func NewModel(serverURL string) *Model {
	ti := textinput.New()
	ti.Placeholder = "输入昵称"
	ti.CharLimit = 20
	ti.Width = 30

	c := transport.NewClient(serverURL)
	reconnectCh := make(chan tea.Msg, 10)

	m := &Model{
		client:       c,
		phase:        PhaseConnecting,
		input:        ti,
		reconnectMsg: reconnectCh,
		soundManager: sound.NewSoundManager(),
		now:          time.Now(),
	}

	c.OnReconnect = func() {
		select {
		case reconnectCh <- reconnectOKMsg{}:
		default:
		}
	}

	return m
}

func (m *Model) Init() tea.Cmd {
	go func() {
		_ = m.soundManager.Init()
	}()

	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
		m.listenForReconnect(),
		m.tick(),
	)
}

func (m *Model) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return connectionErrorMsg{err: err}
		}
		return connectedMsg{}
	}
}

func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return connectionErrorMsg{err: err}
		}
		return serverMessage{msg: msg}
	}
}

func (m *Model) listenForReconnect() tea.Cmd {
	return func() tea.Msg {
		return <-m.reconnectMsg
	}
}

// tick 每秒刷新，驱动投票倒计时和重连横幅
func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// enterHome 回到主菜单并复位输入
func (m *Model) enterHome() {
	m.phase = PhaseHome
	m.room = nil
	m.cursor = 0
	m.errMsg = ""
	m.guessing = false
	m.pendingRoom = ""
	m.input.Reset()
	m.input.Blur()
}

// Update 处理 tea 消息
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case connectedMsg:
		m.enterHome()
		m.client.StartHeartbeat()
		cmds = append(cmds, m.listenForMessages())

	case connectionErrorMsg:
		if !m.client.IsReconnecting() {
			m.errMsg = fmt.Sprintf("无法连接到服务器: %v\n\n按 ESC 退出", msg.err)
			m.phase = PhaseConnecting
		}

	case reconnectOKMsg:
		m.errMsg = ""
		m.reconnectedAt = time.Now()
		cmds = append(cmds, m.listenForReconnect(), m.listenForMessages())

	case tickMsg:
		m.now = time.Time(msg)
		m.latency = m.client.GetLatency()
		cmds = append(cmds, m.tick())

	case serverMessage:
		if cmd := m.handleServerMessage(msg.msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.client.IsConnected() {
			cmds = append(cmds, m.listenForMessages())
		}

	case tea.KeyMsg:
		handled, keyCmd := m.handleKey(msg)
		if keyCmd != nil {
			cmds = append(cmds, keyCmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleServerMessage 处理服务端推送
func (m *Model) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	case protocol.MsgRoomCreated:
		var payload protocol.RoomCreatedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil
		}
		m.room = payload.Room
		m.phase = PhaseInRoom
		m.errMsg = ""
		m.input.Reset()
		m.input.Blur()
		m.soundManager.Play("join")

	case protocol.MsgRoomJoined:
		var payload protocol.RoomJoinedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil
		}
		m.room = payload.Room
		m.phase = PhaseInRoom
		m.errMsg = ""
		m.input.Reset()
		m.input.Blur()
		m.soundManager.Play("join")

	case protocol.MsgRoomUpdate:
		var payload protocol.RoomUpdatePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil
		}
		prev := m.room
		m.room = payload.Room
		m.playTransitionSound(prev, payload.Room)
		// 快照把自己标成离线（旧连接挂掉的善后），当前连接还活着
		// 就立即重报在线，纠正过期的离线标记
		if m.needsOnlineReannounce() && m.client.IsConnected() {
			m.client.SetOnline()
		}

	case protocol.MsgRoomClosed:
		m.enterHome()
		m.errMsg = "房间已关闭"

	case protocol.MsgError:
		var payload protocol.ErrorPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil
		}
		m.errMsg = payload.Message
	}

	return nil
}

// playTransitionSound 根据快照状态变化播放音效
func (m *Model) playTransitionSound(prev, cur *game.Room) {
	if prev == nil || cur == nil || prev.Game.Status == cur.Game.Status {
		return
	}
	switch cur.Game.Status {
	case game.StatusVoting:
		m.soundManager.Play("vote")
	case game.StatusReveal:
		m.soundManager.Play("reveal")
	case game.StatusGameOver:
		if m.didWin(cur) {
			m.soundManager.Play("win")
		} else {
			m.soundManager.Play("lose")
		}
	}
}

// didWin 本地玩家是否获胜
func (m *Model) didWin(room *game.Room) bool {
	me := room.Players[m.client.PlayerID]
	if me == nil || room.Game.Winner == game.WinnerNone {
		return false
	}
	return (room.Game.Winner == game.WinnerSpy) == (me.Role == game.RoleSpy)
}

// needsOnlineReannounce 快照把自己标成了离线
func (m *Model) needsOnlineReannounce() bool {
	me := m.me()
	return me != nil && !me.IsOnline
}

// me 返回本地玩家在快照中的记录，可能为 nil
func (m *Model) me() *game.Player {
	if m.room == nil {
		return nil
	}
	return m.room.Players[m.client.PlayerID]
}

// isHost 本地玩家是否为房主
func (m *Model) isHost() bool {
	return m.room != nil && m.room.IsHost(m.client.PlayerID)
}

// voteRemaining 投票剩余秒数
func (m *Model) voteRemaining() int {
	if m.room == nil || m.room.Game.VoteStartedAt == 0 {
		return 0
	}
	elapsed := m.now.UnixMilli() - m.room.Game.VoteStartedAt
	remaining := m.room.Config.VoteDuration - int(elapsed/1000)
	if remaining < 0 {
		return 0
	}
	return remaining
}
