package models

type Phase string

const (
	PhaseLobby       Phase = "LOBBY"
	PhaseRoleReveal  Phase = "ROLE_REVEAL"
	PhaseGivingClues Phase = "GIVING_CLUES"
	PhaseVoting      Phase = "VOTING"
	PhaseResults     Phase = "RESULTS"
)

type Room struct {
	Code         string   `json:"code"`
	Players      []Player `json:"players"`
	Phase        Phase    `json:"phase"`
	Settings     Settings `json:"settings"`
	SecretWord   string   `json:"secretWord,omitempty"`
	ImposterID   string   `json:"imposterId,omitempty"`
	CurrentTurn  *int     `json:"currentTurn,omitempty"`
	CurrentRound *int     `json:"currentRound,omitempty"`
	Clues        []Clue   `json:"clues"`
	CreatedAt    int64    `json:"createdAt"` // unix millis
}

// Clone returns a deep copy safe to hand out of the store.
func (r *Room) Clone() *Room {
	c := *r
	c.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		c.Players[i] = p.clone()
	}
	c.Clues = make([]Clue, len(r.Clues))
	copy(c.Clues, r.Clues)
	c.CurrentTurn = cloneInt(r.CurrentTurn)
	c.CurrentRound = cloneInt(r.CurrentRound)
	return &c
}

// Redacted strips everything that would give the imposter away. The full
// room is only shown once the game reaches RESULTS.
func (r *Room) Redacted() *Room {
	c := r.Clone()
	if c.Phase == PhaseResults {
		return c
	}
	c.SecretWord = ""
	c.ImposterID = ""
	for i := range c.Players {
		c.Players[i].IsImposter = nil
	}
	return c
}

func (r *Room) PlayerIndex(id string) int {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) FindPlayer(id string) *Player {
	if i := r.PlayerIndex(id); i >= 0 {
		return &r.Players[i]
	}
	return nil
}

func (r *Room) Host() *Player {
	for i := range r.Players {
		if r.Players[i].IsHost {
			return &r.Players[i]
		}
	}
	return nil
}

func (r *Room) IsHost(playerID string) bool {
	p := r.FindPlayer(playerID)
	return p != nil && p.IsHost
}

// TurnOwner is the player allowed to submit the next clue. The turn counter
// keeps growing across rounds, so the owner is always taken modulo the
// current player count.
func (r *Room) TurnOwner() *Player {
	if r.CurrentTurn == nil || len(r.Players) == 0 {
		return nil
	}
	return &r.Players[*r.CurrentTurn%len(r.Players)]
}

func (r *Room) AllVoted() bool {
	for _, p := range r.Players {
		if !p.HasVoted {
			return false
		}
	}
	return len(r.Players) > 0
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
