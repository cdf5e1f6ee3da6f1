package services

import (
	"context"
	"fmt"
	"time"

	"imposter/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryService persists one GameRecord per finished game.
type HistoryService struct {
	NopObserver
	db  *gorm.DB
	now func() time.Time
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db, now: time.Now}
}

// NewGameRecord summarizes a room that reached RESULTS.
func NewGameRecord(room *models.Room, results TallyResult, endedAt time.Time) models.GameRecord {
	record := models.GameRecord{
		RoomCode:       room.Code,
		Category:       string(room.Settings.Category),
		Difficulty:     string(room.Settings.Difficulty),
		ClueRounds:     room.Settings.ClueRounds,
		SecretWord:     room.SecretWord,
		ImposterID:     room.ImposterID,
		MostVotedID:    results.MostVotedID,
		ImposterCaught: results.ImposterCaught,
		PlayerCount:    len(room.Players),
		ClueCount:      len(room.Clues),
		EndedAt:        endedAt,
	}
	if imposter := room.FindPlayer(room.ImposterID); imposter != nil {
		record.ImposterName = imposter.Name
	}
	return record
}

func (s *HistoryService) Record(ctx context.Context, room *models.Room, results TallyResult) (*models.GameRecord, error) {
	record := NewGameRecord(room, results, s.now())
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to save game record: %w", err)
	}
	return &record, nil
}

// Recent returns the latest finished games, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]models.GameRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	var records []models.GameRecord
	if err := s.db.WithContext(ctx).Order("ended_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load game history: %w", err)
	}
	return records, nil
}

func (s *HistoryService) GameEnded(room *models.Room, results TallyResult) {
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	record, err := s.Record(ctx, room, results)
	if err != nil {
		log.Error().Err(err).Str("room_code", room.Code).Msg("Failed to record finished game")
		return
	}
	log.Debug().Uint("record_id", record.ID).Str("room_code", room.Code).Msg("Recorded finished game")
}
