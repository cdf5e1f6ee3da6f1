package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"imposter/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store    *RoomStore
	registry *MemoryRegistry
	sched    *fakeScheduler
	obs      *recordingObserver
	handler  *SessionHandler
	conns    int
}

func newHarness(t *testing.T, opts ...StoreOption) *harness {
	t.Helper()
	h := &harness{
		store:    newTestStore(t, opts...),
		registry: NewMemoryRegistry(),
		sched:    newFakeScheduler(),
		obs:      &recordingObserver{},
	}
	ids := 0
	h.handler = NewSessionHandler(h.store, h.registry, h.sched, h.obs, WithIDGenerator(func() string {
		ids++
		return fmt.Sprintf("player-%d", ids)
	}))
	return h
}

func (h *harness) connect() (*Session, *fakeConn) {
	h.conns++
	conn := newFakeConn(fmt.Sprintf("conn-%d", h.conns))
	return NewSession(conn), conn
}

func (h *harness) send(t *testing.T, sess *Session, typ MessageType, payload any) {
	t.Helper()
	raw := []byte(`{"type":"` + string(typ) + `"}`)
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		raw, err = json.Marshal(Envelope{Type: typ, Payload: data})
		require.NoError(t, err)
	}
	h.handler.OnMessage(sess, raw)
}

type player struct {
	sess *Session
	conn *fakeConn
}

// lobby creates a room with n players; the first is host.
func (h *harness) lobby(t *testing.T, n int) (string, []player) {
	t.Helper()
	sess, conn := h.connect()
	h.send(t, sess, TypeCreateRoom, map[string]string{"playerName": "Host"})
	require.True(t, sess.bound())
	code := sess.RoomCode()
	players := []player{{sess, conn}}

	for i := 1; i < n; i++ {
		sess, conn := h.connect()
		h.send(t, sess, TypeJoinRoom, map[string]string{"playerName": fmt.Sprintf("P%d", i), "roomCode": code})
		require.True(t, sess.bound(), "player %d did not join: %v", i, conn.types(t))
		players = append(players, player{sess, conn})
	}
	for _, p := range players {
		p.conn.reset()
	}
	return code, players
}

func errorPayload(t *testing.T, conn *fakeConn) ErrorPayload {
	t.Helper()
	env := conn.last(t)
	require.Equal(t, TypeError, env.Type)
	return decode[ErrorPayload](t, env)
}

func TestSessionHandler_CreateRoom(t *testing.T) {
	h := newHarness(t)
	sess, conn := h.connect()

	h.send(t, sess, TypeCreateRoom, map[string]string{"playerName": "  Alice  ", "color": "#ABCDEF"})

	env := conn.last(t)
	require.Equal(t, TypeRoomCreated, env.Type)
	payload := decode[JoinedPayload](t, env)
	assert.Equal(t, "player-1", payload.PlayerID)
	require.Len(t, payload.Room.Players, 1)
	assert.Equal(t, "Alice", payload.Room.Players[0].Name)
	assert.Equal(t, "#ABCDEF", payload.Room.Players[0].Color)
	assert.True(t, payload.Room.Players[0].IsHost)
	assert.Equal(t, models.PhaseLobby, payload.Room.Phase)

	assert.Equal(t, "player-1", sess.PlayerID())
	assert.Equal(t, payload.Room.Code, sess.RoomCode())
	code, ok := h.registry.RoomOf("player-1")
	assert.True(t, ok)
	assert.Equal(t, payload.Room.Code, code)
	assert.Equal(t, []string{"created:" + code}, h.obs.snapshot())
}

func TestSessionHandler_JoinRoom(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 2)

	sess, conn := h.connect()
	h.send(t, sess, TypeJoinRoom, map[string]string{"playerName": "Carol", "roomCode": " " + strings.ToLower(code) + " "})

	assert.Equal(t, []MessageType{TypeRoomJoined, TypePlayerJoined}, conn.types(t))
	joined := decode[JoinedPayload](t, conn.envelopes(t)[0])
	assert.Equal(t, "player-3", joined.PlayerID)
	assert.Len(t, joined.Room.Players, 3)
	assert.False(t, joined.Room.Players[2].IsHost)
	assert.Equal(t, models.PlayerColors[2], joined.Room.Players[2].Color)

	for _, p := range players {
		env := p.conn.last(t)
		assert.Equal(t, TypePlayerJoined, env.Type)
		assert.Len(t, decode[RoomPayload](t, env).Room.Players, 3)
	}
}

func TestSessionHandler_JoinRoom_Rejections(t *testing.T) {
	t.Run("unknown room", func(t *testing.T) {
		h := newHarness(t)
		sess, conn := h.connect()
		h.send(t, sess, TypeJoinRoom, map[string]string{"playerName": "Dan", "roomCode": "ZZZZZZ"})

		payload := errorPayload(t, conn)
		assert.Equal(t, KindNotFound, payload.Code)
		assert.Equal(t, "Room not found", payload.Message)
		assert.False(t, sess.bound())
	})

	t.Run("room full", func(t *testing.T) {
		h := newHarness(t)
		code, _ := h.lobby(t, DefaultMaxPlayers)

		sess, conn := h.connect()
		h.send(t, sess, TypeJoinRoom, map[string]string{"playerName": "Eleven", "roomCode": code})

		payload := errorPayload(t, conn)
		assert.Equal(t, KindCapacity, payload.Code)
		assert.Equal(t, "Room is full", payload.Message)
		room, _ := h.store.GetRoom(code)
		assert.Len(t, room.Players, DefaultMaxPlayers)
	})

	t.Run("game in progress", func(t *testing.T) {
		h := newHarness(t)
		code, players := h.lobby(t, 4)
		h.send(t, players[0].sess, TypeStartGame, nil)

		sess, conn := h.connect()
		h.send(t, sess, TypeJoinRoom, map[string]string{"playerName": "Late", "roomCode": code})
		assert.Equal(t, KindCapacity, errorPayload(t, conn).Code)
	})

	t.Run("bad code format", func(t *testing.T) {
		h := newHarness(t)
		sess, conn := h.connect()
		h.send(t, sess, TypeJoinRoom, map[string]string{"playerName": "Dan", "roomCode": "ABC"})
		assert.Equal(t, KindMalformed, errorPayload(t, conn).Code)
	})

	t.Run("same room twice", func(t *testing.T) {
		h := newHarness(t)
		code, players := h.lobby(t, 2)
		h.send(t, players[1].sess, TypeJoinRoom, map[string]string{"playerName": "Again", "roomCode": code})
		assert.Equal(t, KindInvalidPhase, errorPayload(t, players[1].conn).Code)
	})
}

func TestSessionHandler_JoinWhileBoundLeavesFirst(t *testing.T) {
	h := newHarness(t)
	first, players := h.lobby(t, 2)
	second, _ := h.lobby(t, 1)

	mover := players[1]
	h.send(t, mover.sess, TypeJoinRoom, map[string]string{"playerName": "Mover", "roomCode": second})

	assert.Equal(t, second, mover.sess.RoomCode())
	old, err := h.store.GetRoom(first)
	require.NoError(t, err)
	assert.Len(t, old.Players, 1)
	assert.Equal(t, TypePlayerLeft, players[0].conn.last(t).Type)

	room, err := h.store.GetRoom(second)
	require.NoError(t, err)
	assert.Len(t, room.Players, 2)
}

func TestSessionHandler_LeaveRoom(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 3)

	h.send(t, players[0].sess, TypeLeaveRoom, nil)

	assert.False(t, players[0].sess.bound())
	assert.Empty(t, players[0].conn.types(t))
	_, ok := h.registry.Conn("player-1")
	assert.False(t, ok)

	for _, p := range players[1:] {
		env := p.conn.last(t)
		require.Equal(t, TypePlayerLeft, env.Type)
		room := decode[RoomPayload](t, env).Room
		assert.Len(t, room.Players, 2)
		assert.True(t, room.Players[0].IsHost)
		assert.Equal(t, "player-2", room.Players[0].ID)
	}

	// leaving while unbound is a no-op
	h.send(t, players[0].sess, TypeLeaveRoom, nil)
	assert.Empty(t, players[0].conn.types(t))

	room, err := h.store.GetRoom(code)
	require.NoError(t, err)
	assert.Len(t, room.Players, 2)
}

func TestSessionHandler_UpdateSettings(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 4)

	patch := map[string]any{"settings": map[string]any{"category": "ANIMALS", "clueRounds": 4}}
	h.send(t, players[1].sess, TypeUpdateSettings, patch)

	payload := errorPayload(t, players[1].conn)
	assert.Equal(t, KindUnauthorized, payload.Code)
	room, _ := h.store.GetRoom(code)
	assert.Equal(t, models.CategoryFood, room.Settings.Category)

	h.send(t, players[0].sess, TypeUpdateSettings, patch)
	for _, p := range players {
		env := p.conn.last(t)
		require.Equal(t, TypeSettingsUpdated, env.Type)
		settings := decode[RoomPayload](t, env).Room.Settings
		assert.Equal(t, models.CategoryAnimals, settings.Category)
		assert.Equal(t, 4, settings.ClueRounds)
		assert.Equal(t, models.DifficultyMedium, settings.Difficulty)
	}

	h.send(t, players[0].sess, TypeUpdateSettings, map[string]any{"settings": map[string]any{"clueRounds": 9}})
	assert.Equal(t, KindMalformed, errorPayload(t, players[0].conn).Code)
}

func TestSessionHandler_StartGame_NeedsEnoughPlayers(t *testing.T) {
	h := newHarness(t)
	_, players := h.lobby(t, 3)

	h.send(t, players[0].sess, TypeStartGame, nil)

	payload := errorPayload(t, players[0].conn)
	assert.Equal(t, KindCapacity, payload.Code)
	assert.Empty(t, players[1].conn.types(t))
	assert.Empty(t, h.sched.tasks)
}

func TestSessionHandler_StartGame_OnlyHost(t *testing.T) {
	h := newHarness(t)
	_, players := h.lobby(t, 4)

	h.send(t, players[2].sess, TypeStartGame, nil)
	assert.Equal(t, KindUnauthorized, errorPayload(t, players[2].conn).Code)
}

func TestSessionHandler_StartGame_RolesAndRedaction(t *testing.T) {
	h := newHarness(t, WithRandom(func(n int) int { return 2 }))
	code, players := h.lobby(t, 4)

	h.send(t, players[0].sess, TypeStartGame, nil)

	for i, p := range players {
		envs := p.conn.envelopes(t)
		require.Len(t, envs, 2)
		require.Equal(t, TypeRoleAssigned, envs[0].Type)
		role := decode[RoleAssignedPayload](t, envs[0])
		if i == 2 {
			assert.True(t, role.IsImposter)
			assert.Empty(t, role.SecretWord)
			assert.NotContains(t, string(envs[0].Payload), "secretWord")
		} else {
			assert.False(t, role.IsImposter)
			assert.Equal(t, "Pizza", role.SecretWord)
		}

		require.Equal(t, TypeGameStarted, envs[1].Type)
		assert.NotContains(t, string(envs[1].Payload), "Pizza")
		assert.NotContains(t, string(envs[1].Payload), "imposterId")
		assert.NotContains(t, string(envs[1].Payload), "isImposter")
		room := decode[RoomPayload](t, envs[1]).Room
		assert.Equal(t, models.PhaseRoleReveal, room.Phase)
	}

	require.Contains(t, h.sched.tasks, code)
	assert.Equal(t, DefaultRevealDelay, h.sched.delays[code])
}

func TestSessionHandler_FullGame(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 4)
	byID := make(map[string]player)
	for _, p := range players {
		byID[p.sess.PlayerID()] = p
	}

	h.send(t, players[0].sess, TypeStartGame, nil)
	h.sched.fire(t, code)

	for _, p := range players {
		env := p.conn.last(t)
		require.Equal(t, TypeTurnChanged, env.Type)
		assert.Equal(t, models.PhaseGivingClues, decode[RoomPayload](t, env).Room.Phase)
	}

	// default settings: three rounds of four clues
	var last Envelope
	for i := 0; i < 12; i++ {
		room, err := h.store.GetRoom(code)
		require.NoError(t, err)
		owner := byID[room.TurnOwner().ID]
		h.send(t, owner.sess, TypeSubmitClue, map[string]string{"clue": fmt.Sprintf("word%d", i)})
		last = players[0].conn.last(t)
		if i < 11 {
			require.Equal(t, TypeClueSubmitted, last.Type, "clue %d", i)
		}
	}
	require.Equal(t, TypeVotingStarted, last.Type)
	voting := decode[RoomPayload](t, last).Room
	assert.Len(t, voting.Clues, 12)
	assert.Empty(t, voting.SecretWord)

	// imposter is player-1 because the test store always picks index 0
	for i, p := range players {
		h.send(t, p.sess, TypeSubmitVote, map[string]string{"votedPlayerId": "player-1"})
		if i < len(players)-1 {
			assert.Equal(t, TypeVoteSubmitted, p.conn.last(t).Type)
		}
	}

	for _, p := range players {
		env := p.conn.last(t)
		require.Equal(t, TypeGameEnded, env.Type)
		ended := decode[GameEndedPayload](t, env)
		assert.Equal(t, models.PhaseResults, ended.Room.Phase)
		assert.Equal(t, "Pizza", ended.Room.SecretWord)
		assert.Equal(t, "player-1", ended.Room.ImposterID)
		assert.Equal(t, "player-1", ended.Results.MostVotedID)
		assert.True(t, ended.Results.ImposterCaught)
		require.Len(t, ended.Results.Votes, 1)
		assert.Equal(t, 4, ended.Results.Votes[0].VoteCount)
	}
	require.Len(t, h.obs.ended, 1)
	assert.True(t, h.obs.ended[0].ImposterCaught)

	h.send(t, players[1].sess, TypeNextRound, nil)
	assert.Equal(t, KindUnauthorized, errorPayload(t, players[1].conn).Code)

	h.send(t, players[0].sess, TypeNextRound, nil)
	for _, p := range players {
		env := p.conn.last(t)
		require.Equal(t, TypeRoomState, env.Type)
		room := decode[RoomPayload](t, env).Room
		assert.Equal(t, models.PhaseLobby, room.Phase)
		assert.Empty(t, room.Clues)
		assert.Len(t, room.Players, 4)
	}
}

func TestSessionHandler_SubmitClue_Rejections(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 4)
	h.send(t, players[0].sess, TypeStartGame, nil)

	h.send(t, players[0].sess, TypeSubmitClue, map[string]string{"clue": "early"})
	assert.Equal(t, KindInvalidPhase, errorPayload(t, players[0].conn).Code)

	h.sched.fire(t, code)

	h.send(t, players[1].sess, TypeSubmitClue, map[string]string{"clue": "rude"})
	assert.Equal(t, KindNotYourTurn, errorPayload(t, players[1].conn).Code)

	h.send(t, players[0].sess, TypeSubmitClue, map[string]string{"clue": "two words"})
	assert.Equal(t, KindMalformed, errorPayload(t, players[0].conn).Code)

	h.send(t, players[0].sess, TypeSubmitClue, map[string]string{"clue": "   "})
	assert.Equal(t, KindMalformed, errorPayload(t, players[0].conn).Code)

	h.send(t, players[0].sess, TypeSubmitClue, map[string]string{"clue": strings.Repeat("x", 51)})
	assert.Equal(t, KindMalformed, errorPayload(t, players[0].conn).Code)

	room, err := h.store.GetRoom(code)
	require.NoError(t, err)
	assert.Empty(t, room.Clues)
	assert.Equal(t, 0, *room.CurrentTurn)
}

func TestSessionHandler_SubmitClue_PhrasesAllowed(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 4)
	h.send(t, players[0].sess, TypeUpdateSettings, map[string]any{"settings": map[string]any{"allowPhrases": true}})
	h.send(t, players[0].sess, TypeStartGame, nil)
	h.sched.fire(t, code)

	h.send(t, players[0].sess, TypeSubmitClue, map[string]string{"clue": "ice cold"})
	assert.Equal(t, TypeClueSubmitted, players[0].conn.last(t).Type)
}

func TestSessionHandler_NotInRoom(t *testing.T) {
	h := newHarness(t)
	sess, conn := h.connect()

	for _, typ := range []MessageType{TypeStartGame, TypeNextRound} {
		h.send(t, sess, typ, nil)
		payload := errorPayload(t, conn)
		assert.Equal(t, KindNotFound, payload.Code)
		assert.Equal(t, "Not in a room", payload.Message)
	}
	h.send(t, sess, TypeSubmitClue, map[string]string{"clue": "hi"})
	assert.Equal(t, "Not in a room", errorPayload(t, conn).Message)
	h.send(t, sess, TypeSubmitVote, map[string]string{"votedPlayerId": "x"})
	assert.Equal(t, "Not in a room", errorPayload(t, conn).Message)
}

func TestSessionHandler_MalformedInput(t *testing.T) {
	h := newHarness(t)
	sess, conn := h.connect()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "hello"},
		{name: "missing type", raw: `{"payload":{}}`},
		{name: "missing name", raw: `{"type":"CREATE_ROOM","payload":{}}`},
		{name: "name too long", raw: `{"type":"CREATE_ROOM","payload":{"playerName":"` + strings.Repeat("a", 21) + `"}}`},
		{name: "bad color", raw: `{"type":"CREATE_ROOM","payload":{"playerName":"Al","color":"red"}}`},
		{name: "wrong payload type", raw: `{"type":"JOIN_ROOM","payload":"ABCDEF"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn.reset()
			h.handler.OnMessage(sess, []byte(tc.raw))
			assert.Equal(t, KindMalformed, errorPayload(t, conn).Code)
			assert.False(t, sess.bound())
		})
	}
	assert.Empty(t, h.store.Rooms())
}

func TestSessionHandler_UnknownTypeIgnored(t *testing.T) {
	h := newHarness(t)
	_, players := h.lobby(t, 2)

	h.handler.OnMessage(players[0].sess, []byte(`{"type":"DANCE","payload":{}}`))

	assert.Empty(t, players[0].conn.types(t))
	assert.Empty(t, players[1].conn.types(t))
}

func TestSessionHandler_Disconnect(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 3)

	h.handler.OnDisconnect(players[0].sess)

	for _, p := range players[1:] {
		env := p.conn.last(t)
		require.Equal(t, TypePlayerLeft, env.Type)
		room := decode[RoomPayload](t, env).Room
		assert.Equal(t, "player-2", room.Host().ID)
	}
	_, ok := h.registry.RoomOf("player-1")
	assert.False(t, ok)

	h.handler.OnDisconnect(players[1].sess)
	h.handler.OnDisconnect(players[2].sess)
	_, err := h.store.GetRoom(code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Contains(t, h.obs.snapshot(), "closed:"+code)

	// unbound sessions are ignored
	sess, conn := h.connect()
	h.handler.OnDisconnect(sess)
	assert.Empty(t, conn.types(t))
}

func TestSessionHandler_DeferredRevealAfterRoomClosed(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 4)
	h.send(t, players[0].sess, TypeStartGame, nil)
	task := h.sched.tasks[code]
	require.NotNil(t, task)

	for _, p := range players {
		h.handler.OnDisconnect(p.sess)
	}
	assert.NotContains(t, h.sched.tasks, code)

	// a task that already fired still has to be harmless
	assert.NotPanics(t, task)
	_, err := h.store.GetRoom(code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSessionHandler_DeferredRevealAfterPhaseMoved(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 4)
	h.send(t, players[0].sess, TypeStartGame, nil)
	task := h.sched.tasks[code]
	h.sched.fire(t, code)
	players[0].conn.reset()

	task()

	assert.Empty(t, players[0].conn.types(t))
	room, _ := h.store.GetRoom(code)
	assert.Equal(t, models.PhaseGivingClues, room.Phase)
}

func TestSessionHandler_RecoversFromPanics(t *testing.T) {
	words := &MockWordBank{}
	words.On("RandomWord", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("word bank exploded")
	}).Return("", nil)

	h := newHarness(t)
	h.store.words = words
	code, players := h.lobby(t, 4)

	assert.NotPanics(t, func() { h.send(t, players[0].sess, TypeStartGame, nil) })
	payload := errorPayload(t, players[0].conn)
	assert.Equal(t, KindInternal, payload.Code)
	assert.Equal(t, ErrInternal.Message, payload.Message)

	// the store lock was released
	room, err := h.store.GetRoom(code)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLobby, room.Phase)
}

func TestSessionHandler_VoteForUnknownPlayer(t *testing.T) {
	h := newHarness(t)
	code, players := h.lobby(t, 4)
	rounds := 2
	_, err := h.store.UpdateSettings(code, models.SettingsPatch{ClueRounds: &rounds})
	require.NoError(t, err)
	h.send(t, players[0].sess, TypeStartGame, nil)
	h.sched.fire(t, code)
	playAllClues(t, h.store, code)

	h.send(t, players[1].sess, TypeSubmitVote, map[string]string{"votedPlayerId": "player-99"})
	assert.Equal(t, KindNotFound, errorPayload(t, players[1].conn).Code)
}
