package repository

import (
	"errors"

	"github.com/swadeshika/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository is the key-value settings access interface.
type SettingRepository interface {
	GetByKey(key string) (*models.Setting, error)
	Upsert(setting *models.Setting) error
	WithTx(tx *gorm.DB) *GormSettingRepository
}

// GormSettingRepository is the GORM implementation.
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a setting repository.
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormSettingRepository) WithTx(tx *gorm.DB) *GormSettingRepository {
	if tx == nil {
		return r
	}
	return &GormSettingRepository{db: tx}
}

// GetByKey fetches one setting.
func (r *GormSettingRepository) GetByKey(key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Upsert writes a setting, replacing any existing value.
func (r *GormSettingRepository) Upsert(setting *models.Setting) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_json"}),
	}).Create(setting).Error
}
