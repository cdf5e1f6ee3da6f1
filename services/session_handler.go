package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"imposter/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultRevealDelay = 6 * time.Second

// Session is the per-connection binding to a player and room. It is only
// touched from the hub goroutine.
type Session struct {
	conn     Conn
	playerID string
	roomCode string
}

func NewSession(conn Conn) *Session {
	return &Session{conn: conn}
}

func (s *Session) PlayerID() string { return s.playerID }

func (s *Session) RoomCode() string { return s.roomCode }

func (s *Session) bound() bool { return s.playerID != "" && s.roomCode != "" }

func (s *Session) bind(playerID, roomCode string) {
	s.playerID = playerID
	s.roomCode = roomCode
}

func (s *Session) clear() {
	s.playerID = ""
	s.roomCode = ""
}

type intentFunc func(h *SessionHandler, sess *Session, intent Intent) error

var intentRoutes = map[MessageType]intentFunc{
	TypeCreateRoom:     (*SessionHandler).createRoom,
	TypeJoinRoom:       (*SessionHandler).joinRoom,
	TypeLeaveRoom:      (*SessionHandler).leaveRoom,
	TypeUpdateSettings: (*SessionHandler).updateSettings,
	TypeStartGame:      (*SessionHandler).startGame,
	TypeSubmitClue:     (*SessionHandler).submitClue,
	TypeSubmitVote:     (*SessionHandler).submitVote,
	TypeNextRound:      (*SessionHandler).nextRound,
}

// SessionHandler turns validated intents into store calls and broadcasts the
// resulting snapshots. It must be driven from a single goroutine.
type SessionHandler struct {
	store       *RoomStore
	registry    ConnectionRegistry
	scheduler   Scheduler
	observer    RoomObserver
	revealDelay time.Duration
	newID       func() string
}

type HandlerOption func(*SessionHandler)

func WithRevealDelay(d time.Duration) HandlerOption {
	return func(h *SessionHandler) { h.revealDelay = d }
}

func WithIDGenerator(fn func() string) HandlerOption {
	return func(h *SessionHandler) { h.newID = fn }
}

func NewSessionHandler(store *RoomStore, registry ConnectionRegistry, scheduler Scheduler, observer RoomObserver, opts ...HandlerOption) *SessionHandler {
	if observer == nil {
		observer = NopObserver{}
	}
	h := &SessionHandler{
		store:       store,
		registry:    registry,
		scheduler:   scheduler,
		observer:    observer,
		revealDelay: DefaultRevealDelay,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnMessage handles one raw client frame. Failures are reported to the
// sender only; unknown message types are ignored.
func (h *SessionHandler) OnMessage(sess *Session, data []byte) {
	intent, err := ParseIntent(data)
	if err != nil {
		var unknown *UnknownIntentError
		if errors.As(err, &unknown) {
			log.Warn().Str("type", string(unknown.Type)).Str("conn_id", sess.conn.ID()).Msg("Ignoring unknown message type")
			return
		}
		log.Debug().Err(err).Str("conn_id", sess.conn.ID()).Msg("Rejected malformed message")
		h.sendError(sess, err)
		return
	}

	if err := h.dispatch(sess, intent); err != nil {
		log.Debug().
			Err(err).
			Str("type", string(intent.Type())).
			Str("player_id", sess.playerID).
			Str("room_code", sess.roomCode).
			Msg("Intent rejected")
		h.sendError(sess, err)
	}
}

func (h *SessionHandler) dispatch(sess *Session, intent Intent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("type", string(intent.Type())).
				Str("room_code", sess.roomCode).
				Msg("Intent handler panicked")
			err = ErrInternal
		}
	}()

	route, ok := intentRoutes[intent.Type()]
	if !ok {
		return fmt.Errorf("%w: unsupported %s", ErrMalformed, intent.Type())
	}
	return route(h, sess, intent)
}

// OnDisconnect behaves exactly like LEAVE_ROOM for a bound session.
func (h *SessionHandler) OnDisconnect(sess *Session) {
	if !sess.bound() {
		return
	}
	log.Info().Str("player_id", sess.playerID).Str("room_code", sess.roomCode).Msg("Player disconnected")
	h.leave(sess)
}

func (h *SessionHandler) createRoom(sess *Session, intent Intent) error {
	req := intent.(*CreateRoomIntent)
	if sess.bound() {
		h.leave(sess)
	}

	room := h.store.CreateRoom(models.DefaultSettings())
	playerID := h.newID()
	room, err := h.store.AddPlayer(room.Code, models.Player{ID: playerID, Name: req.PlayerName, Color: req.Color})
	if err != nil {
		return err
	}

	h.registry.Bind(playerID, room.Code, sess.conn)
	sess.bind(playerID, room.Code)
	log.Info().Str("room_code", room.Code).Str("player_id", playerID).Msg("Room created")

	h.send(sess.conn, TypeRoomCreated, JoinedPayload{PlayerID: playerID, Room: room.Redacted()})
	h.observer.RoomCreated(room.Redacted())
	return nil
}

func (h *SessionHandler) joinRoom(sess *Session, intent Intent) error {
	req := intent.(*JoinRoomIntent)

	room, err := h.store.GetRoom(req.RoomCode)
	if err != nil {
		return err
	}
	if sess.bound() && sess.roomCode == room.Code {
		return ErrAlreadyInRoom
	}
	if room.Phase != models.PhaseLobby {
		return ErrGameInProgress
	}
	if len(room.Players) >= h.store.MaxPlayers() {
		return ErrRoomFull
	}

	if sess.bound() {
		h.leave(sess)
	}

	playerID := h.newID()
	room, err = h.store.AddPlayer(room.Code, models.Player{ID: playerID, Name: req.PlayerName, Color: req.Color})
	if err != nil {
		return err
	}
	h.registry.Bind(playerID, room.Code, sess.conn)
	sess.bind(playerID, room.Code)
	log.Info().Str("room_code", room.Code).Str("player_id", playerID).Int("players", len(room.Players)).Msg("Player joined")

	snapshot := room.Redacted()
	h.send(sess.conn, TypeRoomJoined, JoinedPayload{PlayerID: playerID, Room: snapshot})
	h.broadcast(room, TypePlayerJoined, RoomPayload{Room: snapshot})
	h.observer.RoomUpdated(snapshot)
	return nil
}

func (h *SessionHandler) leaveRoom(sess *Session, _ Intent) error {
	if sess.bound() {
		h.leave(sess)
	}
	return nil
}

// leave removes the session's player and tells whoever is left. Closing the
// last seat deletes the room and cancels its pending tasks.
func (h *SessionHandler) leave(sess *Session) {
	playerID, code := sess.playerID, sess.roomCode
	h.registry.Unbind(playerID)
	sess.clear()

	room, closed, err := h.store.RemovePlayer(code, playerID)
	if err != nil {
		log.Debug().Err(err).Str("player_id", playerID).Str("room_code", code).Msg("Leave for unknown player")
		return
	}
	if closed {
		h.scheduler.Cancel(code)
		log.Info().Str("room_code", code).Msg("Room closed")
		h.observer.RoomClosed(code)
		return
	}

	log.Info().Str("room_code", code).Str("player_id", playerID).Int("players", len(room.Players)).Msg("Player left")
	snapshot := room.Redacted()
	h.broadcast(room, TypePlayerLeft, RoomPayload{Room: snapshot})
	h.observer.RoomUpdated(snapshot)
}

// member loads the session's room and checks the player is still in it.
func (h *SessionHandler) member(sess *Session) (*models.Room, error) {
	if !sess.bound() {
		return nil, ErrNotInRoom
	}
	room, err := h.store.GetRoom(sess.roomCode)
	if err != nil {
		return nil, err
	}
	if room.FindPlayer(sess.playerID) == nil {
		return nil, ErrPlayerNotFound
	}
	return room, nil
}

func (h *SessionHandler) host(sess *Session) (*models.Room, error) {
	room, err := h.member(sess)
	if err != nil {
		return nil, err
	}
	if !room.IsHost(sess.playerID) {
		return nil, ErrNotHost
	}
	return room, nil
}

func (h *SessionHandler) updateSettings(sess *Session, intent Intent) error {
	req := intent.(*UpdateSettingsIntent)
	if _, err := h.host(sess); err != nil {
		return err
	}

	room, err := h.store.UpdateSettings(sess.roomCode, req.Settings)
	if err != nil {
		return err
	}
	snapshot := room.Redacted()
	h.broadcast(room, TypeSettingsUpdated, RoomPayload{Room: snapshot})
	h.observer.RoomUpdated(snapshot)
	return nil
}

func (h *SessionHandler) startGame(sess *Session, _ Intent) error {
	if _, err := h.host(sess); err != nil {
		return err
	}

	start, err := h.store.StartGame(sess.roomCode)
	if err != nil {
		return err
	}
	room := start.Room
	log.Info().
		Str("room_code", room.Code).
		Int("players", len(room.Players)).
		Str("category", string(room.Settings.Category)).
		Msg("Game started")

	for _, p := range room.Players {
		conn, ok := h.registry.Conn(p.ID)
		if !ok {
			continue
		}
		role := RoleAssignedPayload{IsImposter: p.ID == start.Imposter.ID}
		if !role.IsImposter {
			role.SecretWord = start.SecretWord
		}
		h.send(conn, TypeRoleAssigned, role)
	}

	snapshot := room.Redacted()
	h.broadcast(room, TypeGameStarted, RoomPayload{Room: snapshot})
	h.observer.RoomUpdated(snapshot)

	code := room.Code
	h.scheduler.Schedule(code, h.revealDelay, func() { h.BeginClues(code) })
	return nil
}

// BeginClues is the deferred end of the role reveal. It does nothing if the
// room closed or moved on in the meantime.
func (h *SessionHandler) BeginClues(code string) {
	room, err := h.store.BeginClues(code)
	if err != nil {
		log.Debug().Err(err).Str("room_code", code).Msg("Skipping clue phase transition")
		return
	}
	snapshot := room.Redacted()
	h.broadcast(room, TypeTurnChanged, RoomPayload{Room: snapshot})
	h.observer.RoomUpdated(snapshot)
}

func (h *SessionHandler) submitClue(sess *Session, intent Intent) error {
	req := intent.(*SubmitClueIntent)
	room, err := h.member(sess)
	if err != nil {
		return err
	}
	if !room.Settings.AllowPhrases && strings.ContainsFunc(req.Clue, unicode.IsSpace) {
		return fmt.Errorf("%w: only single-word clues are allowed", ErrMalformed)
	}

	room, err = h.store.SubmitClue(sess.roomCode, sess.playerID, req.Clue)
	if err != nil {
		return err
	}

	event := TypeClueSubmitted
	if room.Phase == models.PhaseVoting {
		event = TypeVotingStarted
		log.Info().Str("room_code", room.Code).Int("clues", len(room.Clues)).Msg("Voting started")
	}
	snapshot := room.Redacted()
	h.broadcast(room, event, RoomPayload{Room: snapshot})
	h.observer.RoomUpdated(snapshot)
	return nil
}

func (h *SessionHandler) submitVote(sess *Session, intent Intent) error {
	req := intent.(*SubmitVoteIntent)
	if _, err := h.member(sess); err != nil {
		return err
	}

	room, err := h.store.SubmitVote(sess.roomCode, sess.playerID, req.VotedPlayerID)
	if err != nil {
		return err
	}

	if room.Phase != models.PhaseResults {
		snapshot := room.Redacted()
		h.broadcast(room, TypeVoteSubmitted, RoomPayload{Room: snapshot})
		h.observer.RoomUpdated(snapshot)
		return nil
	}

	results := Tally(room)
	log.Info().
		Str("room_code", room.Code).
		Str("most_voted", results.MostVotedID).
		Bool("imposter_caught", results.ImposterCaught).
		Msg("Game ended")
	h.broadcast(room, TypeGameEnded, GameEndedPayload{Room: room, Results: results})
	h.observer.GameEnded(room, results)
	return nil
}

func (h *SessionHandler) nextRound(sess *Session, _ Intent) error {
	if _, err := h.host(sess); err != nil {
		return err
	}

	room, err := h.store.NextRound(sess.roomCode)
	if err != nil {
		return err
	}
	snapshot := room.Redacted()
	h.broadcast(room, TypeRoomState, RoomPayload{Room: snapshot})
	h.observer.RoomUpdated(snapshot)
	return nil
}

func (h *SessionHandler) send(conn Conn, t MessageType, payload any) {
	data, err := EncodeMessage(t, payload)
	if err != nil {
		log.Error().Err(err).Str("type", string(t)).Msg("Failed to encode event")
		return
	}
	if !conn.Send(data) {
		log.Warn().Str("conn_id", conn.ID()).Str("type", string(t)).Msg("Dropped event for slow connection")
	}
}

func (h *SessionHandler) sendError(sess *Session, err error) {
	if !sess.conn.Send(EncodeError(err)) {
		log.Warn().Str("conn_id", sess.conn.ID()).Msg("Dropped error for slow connection")
	}
}

// broadcast sends one event to every player currently in room.
func (h *SessionHandler) broadcast(room *models.Room, t MessageType, payload any) {
	data, err := EncodeMessage(t, payload)
	if err != nil {
		log.Error().Err(err).Str("type", string(t)).Str("room_code", room.Code).Msg("Failed to encode broadcast")
		return
	}
	for _, p := range room.Players {
		conn, ok := h.registry.Conn(p.ID)
		if !ok {
			continue
		}
		if !conn.Send(data) {
			log.Warn().Str("player_id", p.ID).Str("type", string(t)).Msg("Dropped broadcast for slow connection")
		}
	}
}
