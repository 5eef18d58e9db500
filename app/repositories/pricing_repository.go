package repositories

import (
	"context"

	"github.com/campusprint/printhub/app/models"
	"gorm.io/gorm"
)

// PricingRepository reads and appends pricing rows.
type PricingRepository struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// Latest returns the most recently inserted row, or ErrNotFound.
func (r *PricingRepository) Latest(ctx context.Context) (*models.PricingConfig, error) {
	var p models.PricingConfig
	if err := r.db.WithContext(ctx).Order("id DESC").First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert appends a row, making it the one in force.
func (r *PricingRepository) Insert(ctx context.Context, p *models.PricingConfig) error {
	return r.db.WithContext(ctx).Create(p).Error
}
