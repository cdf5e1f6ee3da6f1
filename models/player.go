package models

type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RoomCode   string `json:"roomCode"`
	IsHost     bool   `json:"isHost"`
	Color      string `json:"color"`
	IsImposter *bool  `json:"isImposter,omitempty"` // set only while a round is running
	HasVoted   bool   `json:"hasVoted"`
	VotedFor   string `json:"votedFor,omitempty"`
}

func (p Player) clone() Player {
	if p.IsImposter != nil {
		v := *p.IsImposter
		p.IsImposter = &v
	}
	return p
}

// PlayerColors is the avatar palette handed out when a client does not pick one.
var PlayerColors = []string{
	"#FF6B6B", "#4ECDC4", "#FFE66D", "#95E1D3",
	"#F38181", "#AA96DA", "#FCBAD3", "#A8D8EA",
	"#FFAAA5", "#C7CEEA", "#B4F8C8", "#FBE7C6",
	"#A0E7E5", "#FFAEBC", "#B4DDDD", "#E4C1F9",
}

func PlayerColor(index int) string {
	return PlayerColors[index%len(PlayerColors)]
}
