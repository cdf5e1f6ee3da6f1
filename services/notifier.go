package services

import (
	"context"

	"imposter/models"

	"github.com/rs/zerolog/log"
)

// RoomObserver receives room lifecycle events after they are broadcast.
// Implementations run on the notifier goroutine, never on the hub.
type RoomObserver interface {
	RoomCreated(room *models.Room)
	RoomUpdated(room *models.Room)
	RoomClosed(code string)
	GameEnded(room *models.Room, results TallyResult)
}

// NopObserver can be embedded to implement only the events a backend cares about.
type NopObserver struct{}

func (NopObserver) RoomCreated(*models.Room) {}
func (NopObserver) RoomUpdated(*models.Room) {}
func (NopObserver) RoomClosed(string) {}
func (NopObserver) GameEnded(*models.Room, TallyResult) {}

const DefaultNotifierQueue = 256

// Notifier fans room events out to every observer on a single worker, so a
// slow backend never blocks the game loop. Events are dropped when the queue is full.
type Notifier struct {
	observers []RoomObserver
	queue     chan func(RoomObserver)
}

func NewNotifier(size int, observers ...RoomObserver) *Notifier {
	if size <= 0 {
		size = DefaultNotifierQueue
	}
	return &Notifier{
		observers: observers,
		queue:     make(chan func(RoomObserver), size),
	}
}

func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-n.queue:
			for _, obs := range n.observers {
				n.deliver(obs, job)
			}
		}
	}
}

func (n *Notifier) deliver(obs RoomObserver, job func(RoomObserver)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Room observer panicked")
		}
	}()
	job(obs)
}

func (n *Notifier) enqueue(job func(RoomObserver)) {
	if len(n.observers) == 0 {
		return
	}
	select {
	case n.queue <- job:
	default:
		log.Warn().Int("queue", cap(n.queue)).Msg("Notifier queue full, dropping room event")
	}
}

func (n *Notifier) RoomCreated(room *models.Room) {
	n.enqueue(func(o RoomObserver) { o.RoomCreated(room) })
}

func (n *Notifier) RoomUpdated(room *models.Room) {
	n.enqueue(func(o RoomObserver) { o.RoomUpdated(room) })
}

func (n *Notifier) RoomClosed(code string) {
	n.enqueue(func(o RoomObserver) { o.RoomClosed(code) })
}

func (n *Notifier) GameEnded(room *models.Room, results TallyResult) {
	n.enqueue(func(o RoomObserver) { o.GameEnded(room, results) })
}
