package services

import "sync"

// Conn is a live transport connection that can receive encoded events.
type Conn interface {
	ID() string
	Send(data []byte) bool
}

// ConnectionRegistry resolves player ids to their connection and current room.
// It is only used for fan-out, never for game decisions.
type ConnectionRegistry interface {
	Bind(playerID, roomCode string, conn Conn)
	Unbind(playerID string)
	Conn(playerID string) (Conn, bool)
	RoomOf(playerID string) (string, bool)
	Players(roomCode string) []string
}

type MemoryRegistry struct {
	conns map[string]Conn
	rooms map[string]string
	mu    sync.RWMutex
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		conns: make(map[string]Conn),
		rooms: make(map[string]string),
	}
}

func (r *MemoryRegistry) Bind(playerID, roomCode string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[playerID] = conn
	r.rooms[playerID] = roomCode
}

// Unbind is idempotent so leave and disconnect can both call it.
func (r *MemoryRegistry) Unbind(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, playerID)
	delete(r.rooms, playerID)
}

func (r *MemoryRegistry) Conn(playerID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[playerID]
	return conn, ok
}

func (r *MemoryRegistry) RoomOf(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.rooms[playerID]
	return code, ok
}

func (r *MemoryRegistry) Players(roomCode string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, code := range r.rooms {
		if code == roomCode {
			ids = append(ids, id)
		}
	}
	return ids
}
