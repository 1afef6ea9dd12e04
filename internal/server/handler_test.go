package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/undercover-games/spy-villagers/internal/game"
	"github.com/undercover-games/spy-villagers/internal/protocol"
	"github.com/undercover-games/spy-villagers/internal/testutil"
)

func lastPayload[T any](t *testing.T, c *testutil.SimpleClient, msgType protocol.MessageType) *T {
	t.Helper()
	msgs := c.MessagesOfType(msgType)
	require.NotEmpty(t, msgs, "expected a %s message", msgType)

	var payload T
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].Payload, &payload))
	return &payload
}

func TestHandler_Ping(t *testing.T) {
	t.Parallel()
	h := NewHandlerWithManager(newTestManager())

	c := testutil.NewSimpleClient("c1", "Alice")
	h.Handle(c, protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 12345}))

	pong := lastPayload[protocol.PongPayload](t, c, protocol.MsgPong)
	assert.Equal(t, int64(12345), pong.ClientTimestamp)
	assert.NotZero(t, pong.ServerTimestamp)
}

func TestHandler_CreateRoom(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	h := NewHandlerWithManager(rm)

	c := testutil.NewSimpleClient("c1", "Alice")
	h.Handle(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "Alice"}))

	created := lastPayload[protocol.RoomCreatedPayload](t, c, protocol.MsgRoomCreated)
	assert.Len(t, created.RoomID, 8)
	assert.Equal(t, "c1", created.PlayerID)
	require.NotNil(t, created.Room)
	assert.Equal(t, game.StatusLobby, created.Room.Game.Status)
	assert.Equal(t, created.RoomID, c.GetRoom())
	assert.Equal(t, 1, rm.RoomCount())
}

func TestHandler_CreateRoom_EmptyName(t *testing.T) {
	t.Parallel()
	h := NewHandlerWithManager(newTestManager())

	c := testutil.NewSimpleClient("c1", "")
	h.Handle(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "   "}))

	errPayload := lastPayload[protocol.ErrorPayload](t, c, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errPayload.Code)
}

func TestHandler_JoinRoom(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	h := NewHandlerWithManager(rm)

	host := testutil.NewSimpleClient("c1", "Alice")
	h.Handle(host, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "Alice"}))
	created := lastPayload[protocol.RoomCreatedPayload](t, host, protocol.MsgRoomCreated)

	guest := testutil.NewSimpleClient("c2", "Bob")
	h.Handle(guest, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomID: created.RoomID,
		Name:   "Bob",
	}))

	joined := lastPayload[protocol.RoomJoinedPayload](t, guest, protocol.MsgRoomJoined)
	assert.Equal(t, created.RoomID, joined.RoomID)
	assert.Equal(t, "c2", joined.PlayerID)
	assert.Len(t, joined.Room.Players, 2)
}

func TestHandler_JoinRoom_NotFound(t *testing.T) {
	t.Parallel()
	h := NewHandlerWithManager(newTestManager())

	c := testutil.NewSimpleClient("c1", "Bob")
	h.Handle(c, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomID: "00000000",
		Name:   "Bob",
	}))

	errPayload := lastPayload[protocol.ErrorPayload](t, c, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeRoomNotFound, errPayload.Code)
}

func TestHandler_JoinRoom_ReclaimReturnsOriginalID(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	h := NewHandlerWithManager(rm)

	host := testutil.NewSimpleClient("c1", "Alice")
	h.Handle(host, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "Alice"}))
	created := lastPayload[protocol.RoomCreatedPayload](t, host, protocol.MsgRoomCreated)

	// Same name from a new connection: the response carries the old player id
	fresh := testutil.NewSimpleClient("c2", "Alice")
	h.Handle(fresh, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomID: created.RoomID,
		Name:   "alice",
	}))

	joined := lastPayload[protocol.RoomJoinedPayload](t, fresh, protocol.MsgRoomJoined)
	assert.Equal(t, "c1", joined.PlayerID)
	assert.NotEqual(t, fresh.GetID(), joined.PlayerID)
}

func TestHandler_GameFlowOverMessages(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	h := NewHandlerWithManager(rm)

	// Room 12345678-style end to end run, driven purely through messages
	host := testutil.NewSimpleClient("c1", "Host")
	h.Handle(host, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "Host"}))
	created := lastPayload[protocol.RoomCreatedPayload](t, host, protocol.MsgRoomCreated)

	guests := []*testutil.SimpleClient{
		testutil.NewSimpleClient("c2", "Bob"),
		testutil.NewSimpleClient("c3", "Carol"),
	}
	for _, g := range guests {
		h.Handle(g, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
			RoomID: created.RoomID,
			Name:   g.Name,
		}))
	}

	h.Handle(host, protocol.MustNewMessage(protocol.MsgStartGame, nil))
	room := rm.GetRoom(created.RoomID)
	require.NotNil(t, room)
	require.Equal(t, game.StatusPlaying, room.Status())

	h.Handle(host, protocol.MustNewMessage(protocol.MsgStartVoting, nil))
	require.Equal(t, game.StatusVoting, room.Status())

	// Everyone received the voting snapshot
	for _, g := range guests {
		update := lastPayload[protocol.RoomUpdatePayload](t, g, protocol.MsgRoomUpdate)
		assert.Equal(t, game.StatusVoting, update.Room.Game.Status)
	}

	h.Handle(host, protocol.MustNewMessage(protocol.MsgVote, protocol.VotePayload{TargetID: "c2"}))
	h.Handle(guests[1], protocol.MustNewMessage(protocol.MsgVote, protocol.VotePayload{TargetID: "c2"}))
	h.Handle(host, protocol.MustNewMessage(protocol.MsgResolveVote, nil))

	snap := room.Snapshot()
	assert.True(t, snap.Players["c2"].Eliminated)
	assert.NotEqual(t, game.StatusVoting, snap.Game.Status)
}

func TestHandler_VoteErrorsReachClient(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	h := NewHandlerWithManager(rm)

	c := testutil.NewSimpleClient("c1", "Alice")
	// Voting without a room
	h.Handle(c, protocol.MustNewMessage(protocol.MsgVote, protocol.VotePayload{TargetID: "x"}))
	errPayload := lastPayload[protocol.ErrorPayload](t, c, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeNotInRoom, errPayload.Code)

	h.Handle(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "Alice"}))
	// Voting in the lobby
	h.Handle(c, protocol.MustNewMessage(protocol.MsgVote, protocol.VotePayload{TargetID: "x"}))
	errPayload = lastPayload[protocol.ErrorPayload](t, c, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeGameNotStart, errPayload.Code)
}

func TestHandler_ErrorDeliveryExpectations(t *testing.T) {
	t.Parallel()
	h := NewHandlerWithManager(newTestManager())

	// Outside a room, a vote must produce exactly one not-in-room error
	mc := new(testutil.MockClient)
	mc.On("GetRoom").Return("")
	mc.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		if msg.Type != protocol.MsgError {
			return false
		}
		payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
		return err == nil &&
			payload.Code == protocol.ErrCodeNotInRoom &&
			payload.Message == protocol.ErrorMessages[protocol.ErrCodeNotInRoom]
	})).Return().Once()

	h.Handle(mc, protocol.MustNewMessage(protocol.MsgVote, protocol.VotePayload{TargetID: "p2"}))
	mc.AssertExpectations(t)
}

func TestHandler_UnknownMessage(t *testing.T) {
	t.Parallel()
	h := NewHandlerWithManager(newTestManager())

	c := testutil.NewSimpleClient("c1", "Alice")
	h.Handle(c, &protocol.Message{Type: "definitely_not_a_thing"})

	errPayload := lastPayload[protocol.ErrorPayload](t, c, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errPayload.Code)
}

func TestHandler_LeaveRoom(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	h := NewHandlerWithManager(rm)

	c := testutil.NewSimpleClient("c1", "Alice")
	h.Handle(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "Alice"}))
	require.Equal(t, 1, rm.RoomCount())

	h.Handle(c, protocol.MustNewMessage(protocol.MsgLeaveRoom, nil))
	assert.Eventually(t, func() bool { return rm.RoomCount() == 0 },
		time.Second, 10*time.Millisecond)
}
