package services

import (
	"encoding/json"
	"fmt"

	"imposter/models"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const DefaultSubjectPrefix = "imposter"

// Event names appended to the subject prefix, e.g. imposter.room.updated.
const (
	EventRoomCreated = "room.created"
	EventRoomUpdated = "room.updated"
	EventRoomClosed  = "room.closed"
	EventGameEnded   = "game.ended"
)

// Publisher is the slice of *nats.Conn the event publisher needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type RoomEvent struct {
	Code    string       `json:"code"`
	Room    *models.Room `json:"room,omitempty"`
	Results *TallyResult `json:"results,omitempty"`
}

// EventPublisher announces room lifecycle events on NATS for external consumers.
type EventPublisher struct {
	conn   Publisher
	prefix string
}

func NewEventPublisher(conn Publisher, prefix string) *EventPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &EventPublisher{conn: conn, prefix: prefix}
}

var _ Publisher = (*nats.Conn)(nil)

func (p *EventPublisher) Subject(event string) string {
	return p.prefix + "." + event
}

func (p *EventPublisher) publish(event string, payload RoomEvent) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}
	if err := p.conn.Publish(p.Subject(event), data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event, err)
	}
	return nil
}

func (p *EventPublisher) emit(event string, payload RoomEvent) {
	if err := p.publish(event, payload); err != nil {
		log.Warn().Err(err).Str("room_code", payload.Code).Msg("NATS publish failed")
	}
}

func (p *EventPublisher) RoomCreated(room *models.Room) {
	p.emit(EventRoomCreated, RoomEvent{Code: room.Code, Room: room})
}

func (p *EventPublisher) RoomUpdated(room *models.Room) {
	p.emit(EventRoomUpdated, RoomEvent{Code: room.Code, Room: room})
}

func (p *EventPublisher) RoomClosed(code string) {
	p.emit(EventRoomClosed, RoomEvent{Code: code})
}

func (p *EventPublisher) GameEnded(room *models.Room, results TallyResult) {
	p.emit(EventGameEnded, RoomEvent{Code: room.Code, Room: room, Results: &results})
}
