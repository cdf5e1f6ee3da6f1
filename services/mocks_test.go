package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"imposter/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- WordBank ---

type MockWordBank struct {
	mock.Mock
}

func (m *MockWordBank) RandomWord(category models.Category, difficulty models.Difficulty) (string, error) {
	args := m.Called(category, difficulty)
	return args.String(0), args.Error(1)
}

// --- Publisher ---

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

// --- Conn ---

type fakeConn struct {
	id   string
	mu   sync.Mutex
	msgs [][]byte
	full bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return false
	}
	c.msgs = append(c.msgs, data)
	return true
}

func (c *fakeConn) envelopes(t *testing.T) []Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, 0, len(c.msgs))
	for _, raw := range c.msgs {
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		out = append(out, env)
	}
	return out
}

func (c *fakeConn) types(t *testing.T) []MessageType {
	t.Helper()
	var types []MessageType
	for _, env := range c.envelopes(t) {
		types = append(types, env.Type)
	}
	return types
}

func (c *fakeConn) last(t *testing.T) Envelope {
	t.Helper()
	envs := c.envelopes(t)
	require.NotEmpty(t, envs, "connection %s received nothing", c.id)
	return envs[len(envs)-1]
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

func decode[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	return payload
}

// --- Scheduler ---

type fakeScheduler struct {
	tasks  map[string]func()
	delays map[string]time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{tasks: make(map[string]func()), delays: make(map[string]time.Duration)}
}

func (s *fakeScheduler) Schedule(key string, delay time.Duration, task func()) {
	s.tasks[key] = task
	s.delays[key] = delay
}

func (s *fakeScheduler) Cancel(key string) {
	delete(s.tasks, key)
}

func (s *fakeScheduler) fire(t *testing.T, key string) {
	t.Helper()
	task, ok := s.tasks[key]
	require.True(t, ok, "no task scheduled for %s", key)
	delete(s.tasks, key)
	task()
}

// --- RoomObserver ---

type recordingObserver struct {
	mu     sync.Mutex
	events []string
	ended  []TallyResult
}

func (o *recordingObserver) record(event string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) RoomCreated(room *models.Room) { o.record("created:" + room.Code) }

func (o *recordingObserver) RoomUpdated(room *models.Room) { o.record("updated:" + room.Code) }

func (o *recordingObserver) RoomClosed(code string) { o.record("closed:" + code) }

func (o *recordingObserver) GameEnded(room *models.Room, results TallyResult) {
	o.mu.Lock()
	o.ended = append(o.ended, results)
	o.mu.Unlock()
	o.record("ended:" + room.Code)
}

func (o *recordingObserver) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}
