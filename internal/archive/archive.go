package archive

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Kingvinu7/Riddly-sub000/internal/config"
	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

// Store persists finished games. Live room state is never written;
// losing the process loses in-flight rooms.
type Store interface {
	SaveGame(record *models.GameRecord) error
	ListGames(limit int) ([]models.GameRecord, error)
}

type DB struct {
	db *gorm.DB
}

func Connect(cfg *config.Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.GameRecord{}, &models.PlayerResult{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	log.Info().Str("host", cfg.DBHost).Msg("archive database connected")
	return &DB{db: db}, nil
}

func (s *DB) SaveGame(record *models.GameRecord) error {
	return s.db.Create(record).Error
}

func (s *DB) ListGames(limit int) ([]models.GameRecord, error) {
	var records []models.GameRecord
	err := s.db.Preload("Results").
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Noop is used when no database is configured.
type Noop struct{}

func (Noop) SaveGame(*models.GameRecord) error { return nil }

func (Noop) ListGames(int) ([]models.GameRecord, error) {
	return []models.GameRecord{}, nil
}
