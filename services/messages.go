package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"imposter/models"
)

type MessageType string

// Client -> server intents.
const (
	TypeCreateRoom     MessageType = "CREATE_ROOM"
	TypeJoinRoom       MessageType = "JOIN_ROOM"
	TypeLeaveRoom      MessageType = "LEAVE_ROOM"
	TypeUpdateSettings MessageType = "UPDATE_SETTINGS"
	TypeStartGame      MessageType = "START_GAME"
	TypeSubmitClue     MessageType = "SUBMIT_CLUE"
	TypeSubmitVote     MessageType = "SUBMIT_VOTE"
	TypeNextRound      MessageType = "NEXT_ROUND"
)

// Server -> client events.
const (
	TypeRoomCreated     MessageType = "ROOM_CREATED"
	TypeRoomJoined      MessageType = "ROOM_JOINED"
	TypeRoomState       MessageType = "ROOM_STATE"
	TypePlayerJoined    MessageType = "PLAYER_JOINED"
	TypePlayerLeft      MessageType = "PLAYER_LEFT"
	TypeSettingsUpdated MessageType = "SETTINGS_UPDATED"
	TypeGameStarted     MessageType = "GAME_STARTED"
	TypeRoleAssigned    MessageType = "ROLE_ASSIGNED"
	TypeTurnChanged     MessageType = "TURN_CHANGED"
	TypeClueSubmitted   MessageType = "CLUE_SUBMITTED"
	TypeVotingStarted   MessageType = "VOTING_STARTED"
	TypeVoteSubmitted   MessageType = "VOTE_SUBMITTED"
	TypeGameEnded       MessageType = "GAME_ENDED"
	TypeError           MessageType = "ERROR"
)

// Envelope is the wire format of every message in both directions.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outgoing struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

// Intent is a decoded and validated client message.
type Intent interface {
	Type() MessageType
}

type CreateRoomIntent struct {
	PlayerName string `json:"playerName" validate:"required,min=1,max=20"`
	Color      string `json:"color" validate:"omitempty,hexcolor"`
}

type JoinRoomIntent struct {
	PlayerName string `json:"playerName" validate:"required,min=1,max=20"`
	RoomCode   string `json:"roomCode" validate:"required,roomcode"`
	Color      string `json:"color" validate:"omitempty,hexcolor"`
}

type LeaveRoomIntent struct{}

type UpdateSettingsIntent struct {
	Settings models.SettingsPatch `json:"settings"`
}

type StartGameIntent struct{}

type SubmitClueIntent struct {
	Clue string `json:"clue" validate:"required,min=1,max=50"`
}

type SubmitVoteIntent struct {
	VotedPlayerID string `json:"votedPlayerId" validate:"required"`
}

type NextRoundIntent struct{}

func (*CreateRoomIntent) Type() MessageType { return TypeCreateRoom }
func (*JoinRoomIntent) Type() MessageType { return TypeJoinRoom }
func (*LeaveRoomIntent) Type() MessageType { return TypeLeaveRoom }
func (*UpdateSettingsIntent) Type() MessageType { return TypeUpdateSettings }
func (*StartGameIntent) Type() MessageType { return TypeStartGame }
func (*SubmitClueIntent) Type() MessageType { return TypeSubmitClue }
func (*SubmitVoteIntent) Type() MessageType { return TypeSubmitVote }
func (*NextRoundIntent) Type() MessageType { return TypeNextRound }

func (i *CreateRoomIntent) normalize() {
	i.PlayerName = strings.TrimSpace(i.PlayerName)
	i.Color = strings.TrimSpace(i.Color)
}

func (i *JoinRoomIntent) normalize() {
	i.PlayerName = strings.TrimSpace(i.PlayerName)
	i.RoomCode = NormalizeRoomCode(i.RoomCode)
	i.Color = strings.TrimSpace(i.Color)
}

func (i *SubmitClueIntent) normalize() {
	i.Clue = strings.TrimSpace(i.Clue)
}

// UnknownIntentError marks a well-formed envelope whose type is not handled.
type UnknownIntentError struct {
	Type MessageType
}

func (e *UnknownIntentError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

func newIntent(t MessageType) Intent {
	switch t {
	case TypeCreateRoom:
		return &CreateRoomIntent{}
	case TypeJoinRoom:
		return &JoinRoomIntent{}
	case TypeLeaveRoom:
		return &LeaveRoomIntent{}
	case TypeUpdateSettings:
		return &UpdateSettingsIntent{}
	case TypeStartGame:
		return &StartGameIntent{}
	case TypeSubmitClue:
		return &SubmitClueIntent{}
	case TypeSubmitVote:
		return &SubmitVoteIntent{}
	case TypeNextRound:
		return &NextRoundIntent{}
	}
	return nil
}

// ParseIntent decodes an envelope into its concrete intent and validates it.
func ParseIntent(data []byte) (Intent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	intent := newIntent(env.Type)
	if intent == nil {
		return nil, &UnknownIntentError{Type: env.Type}
	}
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, intent); err != nil {
			return nil, fmt.Errorf("%w: bad %s payload", ErrMalformed, env.Type)
		}
	}
	if n, ok := intent.(interface{ normalize() }); ok {
		n.normalize()
	}
	if err := validatePayload(intent); err != nil {
		return nil, err
	}
	return intent, nil
}

type RoomPayload struct {
	Room *models.Room `json:"room"`
}

type JoinedPayload struct {
	PlayerID string       `json:"playerId"`
	Room     *models.Room `json:"room"`
}

type RoleAssignedPayload struct {
	IsImposter bool   `json:"isImposter"`
	SecretWord string `json:"secretWord,omitempty"`
}

type GameEndedPayload struct {
	Room    *models.Room `json:"room"`
	Results TallyResult  `json:"results"`
}

type ErrorPayload struct {
	Message string    `json:"message"`
	Code    ErrorKind `json:"code"`
}

func EncodeMessage(t MessageType, payload any) ([]byte, error) {
	return json.Marshal(outgoing{Type: t, Payload: payload})
}

// EncodeError builds the targeted ERROR event for err.
func EncodeError(err error) []byte {
	msg := err.Error()
	var gameErr *GameError
	if !errors.As(err, &gameErr) {
		msg = ErrInternal.Message
	}
	data, _ := EncodeMessage(TypeError, ErrorPayload{Message: msg, Code: KindOf(err)})
	return data
}
