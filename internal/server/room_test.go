package server

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undercover-games/spy-villagers/internal/apperrors"
	"github.com/undercover-games/spy-villagers/internal/config"
	"github.com/undercover-games/spy-villagers/internal/game"
	"github.com/undercover-games/spy-villagers/internal/storage"
	"github.com/undercover-games/spy-villagers/internal/testutil"
)

func newTestManager() *RoomManager {
	return NewRoomManager(config.Default(), nil)
}

// fillRoom 创建房间并补齐 n 名玩家，返回房间和按加入顺序的玩家 ID
func fillRoom(t *testing.T, rm *RoomManager, n int) (*Room, []string) {
	t.Helper()

	host := testutil.NewSimpleClient("c1", "Player1")
	room, hostID, err := rm.CreateRoom(host, "Player1")
	require.NoError(t, err)

	ids := []string{hostID}
	for i := 2; i <= n; i++ {
		c := testutil.NewSimpleClient(
			"c"+string(rune('0'+i)),
			"Player"+string(rune('0'+i)),
		)
		id, err := room.Join(c, c.Name)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return room, ids
}

// spyAndVillagers 从快照中分出卧底和平民
func spyAndVillagers(t *testing.T, room *Room) (spies, villagers []string) {
	t.Helper()
	snap := room.Snapshot()
	require.NotNil(t, snap)
	for _, id := range snap.OrderedPlayerIDs() {
		if snap.Players[id].Role == game.RoleSpy {
			spies = append(spies, id)
		} else {
			villagers = append(villagers, id)
		}
	}
	return spies, villagers
}

func TestCreateRoom(t *testing.T) {
	t.Parallel()
	rm := newTestManager()

	host := testutil.NewSimpleClient("c1", "Alice")
	room, hostID, err := rm.CreateRoom(host, "Alice")
	require.NoError(t, err)

	assert.Len(t, room.ID(), 8)
	assert.Equal(t, "c1", hostID)
	assert.Equal(t, room.ID(), host.GetRoom())

	snap := room.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, game.StatusLobby, snap.Game.Status)
	assert.Equal(t, hostID, snap.HostID)
	assert.NotEmpty(t, snap.WordPair.VillagerWord)
	assert.NotEmpty(t, snap.WordPair.SpyWord)
	assert.Len(t, snap.UsedWordIndices, 1)
	assert.Equal(t, 1, rm.RoomCount())
}

func TestJoinRoom_NewPlayerOnlyInLobby(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)

	room.StartGame(ids[0])
	require.Equal(t, game.StatusPlaying, room.Status())

	// New names cannot enter a running game
	late := testutil.NewSimpleClient("c9", "Latecomer")
	_, err := room.Join(late, "Latecomer")
	assert.ErrorIs(t, err, apperrors.ErrGameAlreadyStarted)
}

func TestJoinRoom_Full(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Game.MaxPlayers = 2
	rm := NewRoomManager(cfg, nil)

	room, _ := fillRoom(t, rm, 2)

	extra := testutil.NewSimpleClient("c9", "Extra")
	_, err := room.Join(extra, "Extra")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
}

func TestJoinRoom_ReclaimByNameKeepsIdentity(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)

	room.StartGame(ids[0])
	require.Equal(t, game.StatusPlaying, room.Status())

	before := room.Snapshot()
	p2 := before.Players[ids[1]]
	require.NotNil(t, p2)

	// Connection drops: player stays in the document, flagged offline
	room.SetOffline(ids[1])
	snap := room.Snapshot()
	assert.False(t, snap.Players[ids[1]].IsOnline)

	// Same name on a fresh connection reclaims the old identity, even mid-game
	fresh := testutil.NewSimpleClient("c99", p2.Name)
	reclaimedID, err := room.Join(fresh, p2.Name)
	require.NoError(t, err)
	assert.Equal(t, ids[1], reclaimedID)
	assert.Equal(t, ids[1], fresh.GetPlayerID())

	snap = room.Snapshot()
	assert.True(t, snap.Players[ids[1]].IsOnline)
	assert.Equal(t, p2.Role, snap.Players[ids[1]].Role)
	assert.Len(t, snap.Players, 3)
}

func TestJoinRoom_ReclaimCaseInsensitive(t *testing.T) {
	t.Parallel()
	rm := newTestManager()

	host := testutil.NewSimpleClient("c1", "Alice")
	room, hostID, err := rm.CreateRoom(host, "Alice")
	require.NoError(t, err)

	fresh := testutil.NewSimpleClient("c2", "ALICE")
	id, err := room.Join(fresh, "  ALICE ")
	require.NoError(t, err)
	assert.Equal(t, hostID, id)

	// The stale connection gets closed so it cannot shadow the new one
	assert.True(t, host.IsClosed())
	snap := room.Snapshot()
	assert.Len(t, snap.Players, 1)
}

func TestLeave_HostSuccession(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)

	room.Leave(ids[0])

	snap := room.Snapshot()
	require.NotNil(t, snap)
	// Earliest joined of the remaining players inherits the room
	assert.Equal(t, ids[1], snap.HostID)
	assert.Len(t, snap.Players, 2)
}

func TestLeave_LastPlayerClosesRoom(t *testing.T) {
	t.Parallel()
	rm := newTestManager()

	host := testutil.NewSimpleClient("c1", "Alice")
	room, hostID, err := rm.CreateRoom(host, "Alice")
	require.NoError(t, err)

	room.Leave(hostID)

	// Joining a dissolved room fails cleanly
	fresh := testutil.NewSimpleClient("c2", "Bob")
	_, err = room.Join(fresh, "Bob")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
	assert.Eventually(t, func() bool { return rm.RoomCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestSetOffline_NeverDeletesPlayer(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)

	room.SetOffline(ids[2])

	snap := room.Snapshot()
	require.Contains(t, snap.Players, ids[2])
	assert.False(t, snap.Players[ids[2]].IsOnline)

	room.SetOnline(ids[2])
	snap = room.Snapshot()
	assert.True(t, snap.Players[ids[2]].IsOnline)
}

func TestUpdateSettings_HostOnlyInLobby(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)

	// Non-host updates are silently ignored
	room.UpdateSettings(ids[1], game.RoomConfig{SpyCount: 2, VoteDuration: 30})
	snap := room.Snapshot()
	assert.Equal(t, 1, snap.Config.SpyCount)

	room.UpdateSettings(ids[0], game.RoomConfig{SpyCount: 2, AllowVoteChange: true, VoteDuration: 30})
	snap = room.Snapshot()
	assert.Equal(t, 2, snap.Config.SpyCount)
	assert.Equal(t, 30, snap.Config.VoteDuration)

	// SpyCount is clamped to at least 1
	room.UpdateSettings(ids[0], game.RoomConfig{SpyCount: 0, VoteDuration: 30})
	snap = room.Snapshot()
	assert.Equal(t, 1, snap.Config.SpyCount)
}

func TestStartGame_AssignsRoles(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 5)

	// Non-host cannot start
	room.StartGame(ids[1])
	assert.Equal(t, game.StatusLobby, room.Status())

	room.StartGame(ids[0])
	require.Equal(t, game.StatusPlaying, room.Status())

	spies, villagers := spyAndVillagers(t, room)
	assert.Len(t, spies, 1)
	assert.Len(t, villagers, 4)

	snap := room.Snapshot()
	assert.NotZero(t, snap.Game.StartedAt)
	for _, p := range snap.Players {
		assert.False(t, p.Eliminated)
		assert.Empty(t, p.Vote)
	}
}

func TestStartGame_RequiresMinPlayers(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 2)

	// 2 players < 2*1+1
	room.StartGame(ids[0])
	assert.Equal(t, game.StatusLobby, room.Status())
}

func TestVotingFlow_EliminationAndReveal(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 5)
	room.StartGame(ids[0])

	_, villagers := spyAndVillagers(t, room)
	target := villagers[0]

	room.StartVoting()
	require.Equal(t, game.StatusVoting, room.Status())
	snap := room.Snapshot()
	assert.NotZero(t, snap.Game.VoteStartedAt)

	// Everyone else votes out one villager
	for _, id := range ids {
		if id != target {
			require.NoError(t, room.Vote(id, target))
		}
	}

	room.ResolveVote()
	snap = room.Snapshot()
	// 1 spy vs 3 villagers: undecided, show the reveal screen
	require.Equal(t, game.StatusReveal, snap.Game.Status)
	require.NotNil(t, snap.Game.RevealedPlayer)
	assert.Equal(t, target, snap.Game.RevealedPlayer.ID)
	assert.Equal(t, game.RoleVillager, snap.Game.RevealedPlayer.Role)
	assert.True(t, snap.Players[target].Eliminated)

	// Resolving again must not eliminate a second player
	room.ResolveVote()
	snap = room.Snapshot()
	eliminated := 0
	for _, p := range snap.Players {
		if p.Eliminated {
			eliminated++
		}
	}
	assert.Equal(t, 1, eliminated)

	room.EndReveal()
	snap = room.Snapshot()
	assert.Equal(t, game.StatusDiscussion, snap.Game.Status)
	assert.Nil(t, snap.Game.RevealedPlayer)
}

func TestVotingFlow_TieIsDraw(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 4)
	room.StartGame(ids[0])
	room.StartVoting()

	// Two tied leaders: nobody goes home
	require.NoError(t, room.Vote(ids[0], ids[1]))
	require.NoError(t, room.Vote(ids[1], ids[0]))

	room.ResolveVote()
	snap := room.Snapshot()
	assert.Equal(t, game.StatusDraw, snap.Game.Status)
	for _, p := range snap.Players {
		assert.False(t, p.Eliminated)
	}
}

func TestVotingFlow_NoVotesIsDraw(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])
	room.StartVoting()

	room.ResolveVote()
	assert.Equal(t, game.StatusDraw, room.Status())
}

func TestResolveVote_LeaderLeftIsDraw(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 4)
	room.StartGame(ids[0])

	_, villagers := spyAndVillagers(t, room)
	target := villagers[0]

	room.StartVoting()
	for _, id := range ids {
		if id != target {
			require.NoError(t, room.Vote(id, target))
		}
	}

	// The vote leader quits before the resolve; their ballots go with them
	room.Leave(target)
	require.Equal(t, game.StatusVoting, room.Status())

	room.ResolveVote()

	snap := room.Snapshot()
	assert.Equal(t, game.StatusDraw, snap.Game.Status)
	for _, p := range snap.Players {
		assert.False(t, p.Eliminated)
		assert.Empty(t, p.Vote)
	}
}

func TestResolveVote_StaleTargetIsDraw(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])
	room.StartVoting()

	// Ballots pointing at an id that is no longer in the room
	room.doSync(func() {
		room.doc.Players[ids[0]].Vote = "ghost"
		room.doc.Players[ids[1]].Vote = "ghost"
	})

	room.ResolveVote()

	snap := room.Snapshot()
	assert.Equal(t, game.StatusDraw, snap.Game.Status)
	for _, p := range snap.Players {
		assert.False(t, p.Eliminated)
	}
}

func TestStartVoting_UsesRoomVoteDuration(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Game.VoteDuration = 1
	rm := NewRoomManager(cfg, nil)

	room, ids := fillRoom(t, rm, 3)
	// Server-wide default is 1s, the host stretches this room to 5s
	room.UpdateSettings(ids[0], game.RoomConfig{SpyCount: 1, AllowVoteChange: true, VoteDuration: 5})
	room.StartGame(ids[0])
	room.StartVoting()
	require.Equal(t, game.StatusVoting, room.Status())

	// Past the server default, well before the room deadline
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, game.StatusVoting, room.Status())
}

func TestVote_Validation(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])

	// Not in voting yet
	assert.ErrorIs(t, room.Vote(ids[0], ids[1]), apperrors.ErrGameNotStart)

	room.StartVoting()

	// Self-vote and unknown target are rejected
	assert.ErrorIs(t, room.Vote(ids[0], ids[0]), apperrors.ErrInvalidVoteTarget)
	assert.ErrorIs(t, room.Vote(ids[0], "nobody"), apperrors.ErrInvalidVoteTarget)
	assert.ErrorIs(t, room.Vote("ghost", ids[0]), apperrors.ErrNotInRoom)
}

func TestVote_ChangeDeniedWhenDisallowed(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)

	room.UpdateSettings(ids[0], game.RoomConfig{SpyCount: 1, AllowVoteChange: false, VoteDuration: 15})
	room.StartGame(ids[0])
	room.StartVoting()

	require.NoError(t, room.Vote(ids[0], ids[1]))
	assert.ErrorIs(t, room.Vote(ids[0], ids[2]), apperrors.ErrVoteChangeDenied)

	// The original vote stands
	snap := room.Snapshot()
	assert.Equal(t, ids[1], snap.Players[ids[0]].Vote)
}

func TestVotingFlow_SpyEliminatedEndsGame(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])

	spies, villagers := spyAndVillagers(t, room)
	require.Len(t, spies, 1)

	room.StartVoting()
	for _, id := range villagers {
		require.NoError(t, room.Vote(id, spies[0]))
	}
	room.ResolveVote()

	snap := room.Snapshot()
	assert.Equal(t, game.StatusGameOver, snap.Game.Status)
	assert.Equal(t, game.WinnerVillager, snap.Game.Winner)
	require.NotNil(t, snap.Game.RevealedPlayer)
	assert.Equal(t, game.RoleSpy, snap.Game.RevealedPlayer.Role)
}

func TestGuessWord_CorrectWinsForSpy(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])

	spies, _ := spyAndVillagers(t, room)
	snap := room.Snapshot()

	require.NoError(t, room.GuessWord(spies[0], snap.WordPair.VillagerWord))

	snap = room.Snapshot()
	assert.Equal(t, game.StatusGameOver, snap.Game.Status)
	assert.Equal(t, game.WinnerSpy, snap.Game.Winner)
	assert.Equal(t, game.EndReasonGuessedCorrect, snap.Game.EndReason)
	assert.Equal(t, spies[0], snap.Game.HeroID)
}

func TestGuessWord_WrongLosesForSpy(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])

	spies, _ := spyAndVillagers(t, room)

	require.NoError(t, room.GuessWord(spies[0], "完全不对的词"))

	snap := room.Snapshot()
	assert.Equal(t, game.StatusGameOver, snap.Game.Status)
	assert.Equal(t, game.WinnerVillager, snap.Game.Winner)
	assert.Equal(t, game.EndReasonGuessedWrong, snap.Game.EndReason)
	assert.Equal(t, spies[0], snap.Game.HeroID)
}

func TestGuessWord_RejectedOutsidePlay(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)

	// Lobby: no roles yet
	assert.ErrorIs(t, room.GuessWord(ids[0], "咖啡"), apperrors.ErrInvalidGuess)
}

func TestCheckViability_PlayerLeftDecidesGame(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])

	_, villagers := spyAndVillagers(t, room)

	// A villager quits mid-game: 1 spy vs 1 villager, spies reach parity
	room.Leave(villagers[0])

	snap := room.Snapshot()
	assert.Equal(t, game.StatusGameOver, snap.Game.Status)
	assert.Equal(t, game.WinnerSpy, snap.Game.Winner)
	assert.Equal(t, game.EndReasonPlayerLeft, snap.Game.EndReason)
}

func TestCheckViability_SpyLeftVillagersWin(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 4)
	room.StartGame(ids[0])

	spies, _ := spyAndVillagers(t, room)
	room.Leave(spies[0])

	snap := room.Snapshot()
	assert.Equal(t, game.StatusGameOver, snap.Game.Status)
	assert.Equal(t, game.WinnerVillager, snap.Game.Winner)
	assert.Equal(t, game.EndReasonPlayerLeft, snap.Game.EndReason)
}

func TestCheckViability_NotEnoughPlayers(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])

	// Force everyone but one out of the running game
	room.doSync(func() {
		room.doc.Players[ids[1]].Eliminated = true
		room.doc.Players[ids[2]].Eliminated = true
	})
	room.CheckViability()

	snap := room.Snapshot()
	assert.Equal(t, game.StatusGameOver, snap.Game.Status)
	assert.Equal(t, game.WinnerNone, snap.Game.Winner)
	assert.Equal(t, game.EndReasonNotEnoughPlayers, snap.Game.EndReason)
}

func TestBackToLobby_NewWordAndOfflinePurge(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])

	spies, _ := spyAndVillagers(t, room)
	before := room.Snapshot()

	room.SetOffline(ids[2])
	require.NoError(t, room.GuessWord(spies[0], before.WordPair.VillagerWord))
	require.Equal(t, game.StatusGameOver, room.Status())

	// Only the host restarts the round
	room.BackToLobby(ids[1])
	require.Equal(t, game.StatusGameOver, room.Status())

	room.BackToLobby(ids[0])

	snap := room.Snapshot()
	assert.Equal(t, game.StatusLobby, snap.Game.Status)
	// Offline player purged, survivors reset
	assert.NotContains(t, snap.Players, ids[2])
	for _, p := range snap.Players {
		assert.Equal(t, game.RoleNone, p.Role)
		assert.False(t, p.Eliminated)
		assert.Empty(t, p.Vote)
	}
	// A fresh pair was drawn and recorded
	assert.Len(t, snap.UsedWordIndices, 2)
	assert.NotEqual(t, before.WordPair, snap.WordPair)
}

func TestResetRoom_KeepsPlayersAndWords(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)
	room.StartGame(ids[0])

	before := room.Snapshot()
	room.SetOffline(ids[2])

	room.ResetRoom(ids[0])

	snap := room.Snapshot()
	assert.Equal(t, game.StatusLobby, snap.Game.Status)
	// Reset keeps everyone, offline included, and the current word pair
	assert.Len(t, snap.Players, 3)
	assert.Equal(t, before.WordPair, snap.WordPair)
}

func TestUpdateAvatar(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	room, ids := fillRoom(t, rm, 3)

	room.UpdateAvatar(ids[1], "🐸")

	snap := room.Snapshot()
	assert.Equal(t, "🐸", snap.Players[ids[1]].Avatar)
}

func TestVote_OnDissolvedRoom(t *testing.T) {
	t.Parallel()
	rm := newTestManager()

	host := testutil.NewSimpleClient("c1", "Alice")
	room, hostID, err := rm.CreateRoom(host, "Alice")
	require.NoError(t, err)

	room.Leave(hostID)

	// Commands against a dissolved room fail with a definite error
	assert.ErrorIs(t, room.Vote("c1", "c2"), apperrors.ErrRoomNotFound)
	assert.ErrorIs(t, room.GuessWord("c1", "咖啡"), apperrors.ErrRoomNotFound)
}

func TestCleanup_ReapsEndedAndAbandonedRooms(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Game.RoomIdleTimeout = 0
	rm := NewRoomManager(cfg, nil)

	// Finished game nobody restarted
	ended, endedIDs := fillRoom(t, rm, 3)
	ended.StartGame(endedIDs[0])
	spies, _ := spyAndVillagers(t, ended)
	snap := ended.Snapshot()
	require.NoError(t, ended.GuessWord(spies[0], snap.WordPair.VillagerWord))
	require.Equal(t, game.StatusGameOver, ended.Status())

	// Running game where every connection dropped
	zombie, zombieIDs := fillRoom(t, rm, 3)
	zombie.StartGame(zombieIDs[0])
	for _, id := range zombieIDs {
		zombie.SetOffline(id)
	}
	require.Equal(t, game.StatusPlaying, zombie.Status())

	// Running game with live connections stays untouched
	active, activeIDs := fillRoom(t, rm, 3)
	active.StartGame(activeIDs[0])
	require.Equal(t, game.StatusPlaying, active.Status())

	rm.cleanup()

	assert.Eventually(t, func() bool { return rm.RoomCount() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, game.StatusPlaying, active.Status())
}

func TestRoomPersistence_KeepsLatestSnapshot(t *testing.T) {
	t.Parallel()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	rm := NewRoomManager(config.Default(), store)

	room, ids := fillRoom(t, rm, 3)

	// Rapid-fire mutations: the persisted document must end on the last one
	for _, avatar := range []string{"🐸", "🐱", "🐶", "🦊", "🐼"} {
		room.UpdateAvatar(ids[1], avatar)
	}
	want := room.Snapshot()
	require.Equal(t, "🐼", want.Players[ids[1]].Avatar)

	ctx := context.Background()
	assert.Eventually(t, func() bool {
		loaded, err := store.LoadRoom(ctx, room.ID())
		if err != nil || loaded == nil {
			return false
		}
		p := loaded.Players[ids[1]]
		return p != nil && p.Avatar == "🐼"
	}, time.Second, 10*time.Millisecond)
}

func TestManagerShutdown(t *testing.T) {
	t.Parallel()
	rm := newTestManager()
	fillRoom(t, rm, 2)
	fillRoom(t, rm, 2)
	require.Equal(t, 2, rm.RoomCount())

	rm.Shutdown()
	assert.Eventually(t, func() bool { return rm.RoomCount() == 0 },
		time.Second, 10*time.Millisecond)
}
