package services

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"imposter/models"
)

const (
	DefaultMinPlayers = 4
	DefaultMaxPlayers = 10
)

// RoomStore owns every room and is the only place room state is mutated.
// Each method is atomic; callers only ever see cloned snapshots.
type RoomStore struct {
	rooms      map[string]*models.Room
	mu         sync.RWMutex
	words      WordBank
	intN       func(n int) int
	newCode    func() string
	now        func() time.Time
	minPlayers int
	maxPlayers int
}

type StoreOption func(*RoomStore)

func WithPlayerLimits(min, max int) StoreOption {
	return func(s *RoomStore) {
		s.minPlayers = min
		s.maxPlayers = max
	}
}

func WithCodeGenerator(fn func() string) StoreOption {
	return func(s *RoomStore) { s.newCode = fn }
}

func WithRandom(intN func(n int) int) StoreOption {
	return func(s *RoomStore) { s.intN = intN }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *RoomStore) { s.now = now }
}

func NewRoomStore(words WordBank, opts ...StoreOption) *RoomStore {
	s := &RoomStore{
		rooms:      make(map[string]*models.Room),
		words:      words,
		intN:       rand.Intn,
		newCode:    GenerateRoomCode,
		now:        time.Now,
		minPlayers: DefaultMinPlayers,
		maxPlayers: DefaultMaxPlayers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RoomStore) MaxPlayers() int {
	return s.maxPlayers
}

// GameStart is the result of a successful StartGame.
type GameStart struct {
	Room       *models.Room
	Imposter   models.Player
	SecretWord string
}

// RoomPatch is a shallow update; nil fields are kept.
type RoomPatch struct {
	Phase    *models.Phase
	Settings *models.Settings
}

func (s *RoomStore) CreateRoom(settings models.Settings) *models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.newCode()
	for s.rooms[code] != nil {
		code = s.newCode()
	}

	room := &models.Room{
		Code:      code,
		Players:   []models.Player{},
		Phase:     models.PhaseLobby,
		Settings:  settings,
		Clues:     []models.Clue{},
		CreatedAt: s.now().UnixMilli(),
	}
	s.rooms[code] = room
	return room.Clone()
}

func (s *RoomStore) GetRoom(code string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

// Rooms returns every open room, oldest first.
func (s *RoomStore) Rooms() []*models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room.Clone())
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt == rooms[j].CreatedAt {
			return rooms[i].Code < rooms[j].Code
		}
		return rooms[i].CreatedAt < rooms[j].CreatedAt
	})
	return rooms
}

func (s *RoomStore) UpdateRoom(code string, patch RoomPatch) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if patch.Phase != nil {
		room.Phase = *patch.Phase
	}
	if patch.Settings != nil {
		room.Settings = *patch.Settings
	}
	return room.Clone(), nil
}

// UpdateSettings merges a partial settings update. Settings only change in the lobby.
func (s *RoomStore) UpdateSettings(code string, patch models.SettingsPatch) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Phase != models.PhaseLobby {
		return nil, ErrWrongPhase
	}
	merged := room.Settings.Merge(patch)
	if err := ValidateSettings(merged); err != nil {
		return nil, err
	}
	room.Settings = merged
	return room.Clone(), nil
}

// AddPlayer appends a player; the first one in becomes host. Capacity and
// the lobby-only rule are the caller's job.
func (s *RoomStore) AddPlayer(code string, player models.Player) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	player.RoomCode = code
	player.IsHost = len(room.Players) == 0
	player.IsImposter = nil
	player.HasVoted = false
	player.VotedFor = ""
	if player.Color == "" {
		player.Color = models.PlayerColor(len(room.Players))
	}
	room.Players = append(room.Players, player)
	return room.Clone(), nil
}

// RemovePlayer drops a player and promotes the oldest remaining player if the
// host left. When the last player leaves the room is deleted and closed is
// true; callers must not broadcast in that case.
func (s *RoomStore) RemovePlayer(code, playerID string) (room *models.Room, closed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[code]
	if !ok {
		return nil, false, ErrRoomNotFound
	}
	idx := r.PlayerIndex(playerID)
	if idx < 0 {
		return nil, false, ErrPlayerNotFound
	}

	wasHost := r.Players[idx].IsHost
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if len(r.Players) == 0 {
		delete(s.rooms, code)
		return nil, true, nil
	}
	if wasHost {
		r.Players[0].IsHost = true
	}
	return r.Clone(), false, nil
}

func (s *RoomStore) StartGame(code string) (*GameStart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Phase != models.PhaseLobby {
		return nil, ErrWrongPhase
	}
	if n := len(room.Players); n < s.minPlayers || n > s.maxPlayers {
		return nil, fmt.Errorf("%w: need between %d and %d, have %d", ErrPlayerCount, s.minPlayers, s.maxPlayers, n)
	}

	word, err := s.words.RandomWord(room.Settings.Category, room.Settings.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	imposter := room.Players[s.intN(len(room.Players))]

	turn, round := 0, 1
	room.Phase = models.PhaseRoleReveal
	room.SecretWord = word
	room.ImposterID = imposter.ID
	room.CurrentTurn = &turn
	room.CurrentRound = &round
	room.Clues = []models.Clue{}
	for i := range room.Players {
		isImposter := room.Players[i].ID == imposter.ID
		room.Players[i].IsImposter = &isImposter
		room.Players[i].HasVoted = false
		room.Players[i].VotedFor = ""
	}

	snapshot := room.Clone()
	return &GameStart{
		Room:       snapshot,
		Imposter:   *snapshot.FindPlayer(imposter.ID),
		SecretWord: word,
	}, nil
}

// BeginClues moves a room out of the role reveal. It fails unless the room
// still exists and is still revealing roles, which makes the delayed call
// after START_GAME safe to fire late.
func (s *RoomStore) BeginClues(code string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Phase != models.PhaseRoleReveal {
		return nil, ErrWrongPhase
	}
	room.Phase = models.PhaseGivingClues
	return room.Clone(), nil
}

func (s *RoomStore) SubmitClue(code, playerID, text string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Phase != models.PhaseGivingClues {
		return nil, ErrWrongPhase
	}
	player := room.FindPlayer(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if owner := room.TurnOwner(); owner == nil || owner.ID != playerID {
		return nil, ErrNotYourTurn
	}

	room.Clues = append(room.Clues, models.Clue{
		PlayerID:   playerID,
		PlayerName: player.Name,
		Clue:       text,
		Timestamp:  s.now().UnixMilli(),
	})
	*room.CurrentTurn++

	if *room.CurrentTurn >= len(room.Players)*(*room.CurrentRound) {
		if *room.CurrentRound >= room.Settings.ClueRounds {
			room.Phase = models.PhaseVoting
		} else {
			*room.CurrentRound++
		}
	}
	return room.Clone(), nil
}

// SubmitVote records or overwrites a vote. Once every current player has
// voted the room moves to RESULTS.
func (s *RoomStore) SubmitVote(code, playerID, votedForID string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Phase != models.PhaseVoting {
		return nil, ErrWrongPhase
	}
	voter := room.FindPlayer(playerID)
	if voter == nil {
		return nil, ErrPlayerNotFound
	}
	if room.FindPlayer(votedForID) == nil {
		return nil, fmt.Errorf("%w: cannot vote for %q", ErrPlayerNotFound, votedForID)
	}

	voter.HasVoted = true
	voter.VotedFor = votedForID
	if room.AllVoted() {
		room.Phase = models.PhaseResults
	}
	return room.Clone(), nil
}

// NextRound sends a finished game back to the lobby, keeping players and settings.
func (s *RoomStore) NextRound(code string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Phase != models.PhaseResults {
		return nil, ErrWrongPhase
	}

	room.Phase = models.PhaseLobby
	room.SecretWord = ""
	room.ImposterID = ""
	room.CurrentTurn = nil
	room.CurrentRound = nil
	room.Clues = []models.Clue{}
	for i := range room.Players {
		room.Players[i].IsImposter = nil
		room.Players[i].HasVoted = false
		room.Players[i].VotedFor = ""
	}
	return room.Clone(), nil
}
