package services

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindInvalidPhase ErrorKind = "INVALID_PHASE"
	KindNotYourTurn  ErrorKind = "NOT_YOUR_TURN"
	KindCapacity     ErrorKind = "CAPACITY"
	KindMalformed    ErrorKind = "MALFORMED"
	KindInternal     ErrorKind = "INTERNAL"
)

// GameError is a recoverable failure reported back to the requesting connection only.
type GameError struct {
	Kind    ErrorKind
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *GameError {
	return &GameError{Kind: kind, Message: message}
}

var (
	ErrRoomNotFound   = newError(KindNotFound, "Room not found")
	ErrPlayerNotFound = newError(KindNotFound, "Player not found")
	ErrNotInRoom      = newError(KindNotFound, "Not in a room")
	ErrAlreadyInRoom  = newError(KindInvalidPhase, "Already in this room")
	ErrNotHost        = newError(KindUnauthorized, "Only the host can do that")
	ErrWrongPhase     = newError(KindInvalidPhase, "Action not allowed in the current phase")
	ErrPlayerCount    = newError(KindCapacity, "Wrong number of players to start")
	ErrNotYourTurn    = newError(KindNotYourTurn, "It's not your turn")
	ErrRoomFull       = newError(KindCapacity, "Room is full")
	ErrGameInProgress = newError(KindCapacity, "Game already in progress")
	ErrMalformed      = newError(KindMalformed, "Malformed message")
	ErrRateLimited    = newError(KindMalformed, "Too many messages, slow down")
	ErrInternal       = newError(KindInternal, "Internal server error")
)

// KindOf reports the kind of err, falling back to INTERNAL for foreign errors.
func KindOf(err error) ErrorKind {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error onto the status code the REST handlers reply with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidPhase, KindNotYourTurn, KindCapacity:
		return http.StatusConflict
	case KindMalformed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
