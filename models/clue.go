package models

type Clue struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Clue       string `json:"clue"`
	Timestamp  int64  `json:"timestamp"` // unix millis
}
