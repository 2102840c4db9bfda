package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"gorm.io/gorm"
)

// GenerationRecord is the postgres row for one GenerationResult
type GenerationRecord struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	Instruction string    `gorm:"type:text;not null"`
	Model       string    `gorm:"not null"`
	Provider    string    `gorm:"not null"`
	CreatedAtMs int64     `gorm:"index;not null"`     // epoch millis from the result
	Variations  string    `gorm:"type:text;not null"` // JSON array of models.Variation
	StoredAt    time.Time `gorm:"autoCreateTime"`
}

// TableName pins the table name
func (GenerationRecord) TableName() string {
	return "generation_history"
}

func toRecord(result models.GenerationResult) (GenerationRecord, error) {
	variations, err := json.Marshal(result.Variations)
	if err != nil {
		return GenerationRecord{}, err
	}
	return GenerationRecord{
		ID:          result.ID,
		Instruction: result.Instruction,
		Model:       result.Model,
		Provider:    result.Provider,
		CreatedAtMs: result.CreatedAt,
		Variations:  string(variations),
	}, nil
}

func (r GenerationRecord) toResult() (models.GenerationResult, error) {
	var variations []models.Variation
	if err := json.Unmarshal([]byte(r.Variations), &variations); err != nil {
		return models.GenerationResult{}, err
	}
	return models.GenerationResult{
		ID:          r.ID,
		Instruction: r.Instruction,
		Variations:  variations,
		CreatedAt:   r.CreatedAtMs,
		Model:       r.Model,
		Provider:    r.Provider,
	}, nil
}

// GormStore keeps history in postgres
type GormStore struct {
	db    *gorm.DB
	limit int
}

// NewGormStore creates a store on a migrated connection
func NewGormStore(db *gorm.DB, limit int) *GormStore {
	return &GormStore{db: db, limit: limit}
}

func (s *GormStore) Append(ctx context.Context, result models.GenerationResult) error {
	record, err := toRecord(result)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to append history entry: %w", err)
		}

		keep := tx.Model(&GenerationRecord{}).
			Select("id").
			Order("created_at_ms DESC").
			Limit(s.limit)
		if err := tx.Where("id NOT IN (?)", keep).Delete(&GenerationRecord{}).Error; err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}
		return nil
	})
}

func (s *GormStore) List(ctx context.Context, limit int) ([]models.GenerationResult, error) {
	query := s.db.WithContext(ctx).Order("created_at_ms DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []GenerationRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	out := make([]models.GenerationResult, 0, len(records))
	for _, r := range records {
		result, err := r.toResult()
		if err != nil {
			return nil, fmt.Errorf("failed to decode history entry %s: %w", r.ID, err)
		}
		out = append(out, result)
	}
	return out, nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&GenerationRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
