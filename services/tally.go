package services

import (
	"sort"

	"imposter/models"
)

type VoteCount struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	VoteCount  int    `json:"voteCount"`
}

type TallyResult struct {
	Votes          []VoteCount `json:"voteResults"`
	MostVotedID    string      `json:"mostVotedId,omitempty"`
	ImposterCaught bool        `json:"imposterCaught"`
}

// Tally counts the current votedFor values. A tie for first place means
// nobody was singled out and the imposter escapes.
func Tally(room *models.Room) TallyResult {
	counts := make(map[string]int)
	for _, p := range room.Players {
		if p.VotedFor != "" {
			counts[p.VotedFor]++
		}
	}

	votes := make([]VoteCount, 0, len(counts))
	for _, p := range room.Players {
		if n := counts[p.ID]; n > 0 {
			votes = append(votes, VoteCount{PlayerID: p.ID, PlayerName: p.Name, VoteCount: n})
		}
	}
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].VoteCount > votes[j].VoteCount
	})

	result := TallyResult{Votes: votes}
	if len(votes) > 0 && (len(votes) == 1 || votes[0].VoteCount > votes[1].VoteCount) {
		result.MostVotedID = votes[0].PlayerID
		result.ImposterCaught = room.ImposterID != "" && result.MostVotedID == room.ImposterID
	}
	return result
}
