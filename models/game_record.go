package models

import (
	"time"

	"gorm.io/gorm"
)

type GameRecord struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	RoomCode       string         `json:"room_code" gorm:"index;size:6;not null"`
	Category       string         `json:"category" gorm:"not null"`
	Difficulty     string         `json:"difficulty" gorm:"not null"`
	ClueRounds     int            `json:"clue_rounds" gorm:"not null"`
	SecretWord     string         `json:"secret_word" gorm:"not null"`
	ImposterID     string         `json:"imposter_id" gorm:"not null"`
	ImposterName   string         `json:"imposter_name" gorm:"not null"`
	MostVotedID    string         `json:"most_voted_id"`
	ImposterCaught bool           `json:"imposter_caught" gorm:"not null;default:false"`
	PlayerCount    int            `json:"player_count" gorm:"not null"`
	ClueCount      int            `json:"clue_count" gorm:"not null"`
	EndedAt        time.Time      `json:"ended_at" gorm:"index"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
