//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/undercover-games/spy-villagers/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomID string) {
	m.Called(roomID)
}

func (m *MockClient) GetPlayerID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetPlayerID(playerID string) {
	m.Called(playerID)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// NewSimpleClient 创建简单客户端，PlayerID 初始等于连接 ID
func NewSimpleClient(id, name string) *SimpleClient {
	return &SimpleClient{ID: id, Name: name, playerID: id}
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言的测试）。
// 房间协程会并发推送快照，因此内部加锁。
type SimpleClient struct {
	ID   string
	Name string

	mu       sync.Mutex
	roomID   string
	playerID string
	messages []*protocol.Message
	closed   bool
}

func (m *SimpleClient) GetID() string   { return m.ID }
func (m *SimpleClient) GetName() string { return m.Name }

func (m *SimpleClient) GetRoom() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomID
}

func (m *SimpleClient) SetRoom(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roomID = id
}

func (m *SimpleClient) GetPlayerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerID
}

func (m *SimpleClient) SetPlayerID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerID = id
}

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *SimpleClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// IsClosed 连接是否已被关闭
func (m *SimpleClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// LastMessage 返回最后一条收到的消息，没有则返回 nil
func (m *SimpleClient) LastMessage() *protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

// MessagesOfType 返回指定类型的所有消息
func (m *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*protocol.Message
	for _, msg := range m.messages {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}
