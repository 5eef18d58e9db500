package repositories

import (
	"context"

	"github.com/campusprint/printhub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByIdentityID looks up a user by the identity provider's id.
func (r *UserRepository) FindByIdentityID(ctx context.Context, identityID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FirstOrCreate inserts user unless a row with the same identity id exists,
// then returns the stored row. Concurrent first requests for one identity
// both end up with the same record.
func (r *UserRepository) FirstOrCreate(ctx context.Context, user *models.User) (*models.User, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_id"}},
		DoNothing: true,
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return r.FindByIdentityID(ctx, user.IdentityID)
}

// UpdateProfile overwrites the editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, identityID, phone, hostel string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("identity_id = ?", identityID).
		Updates(map[string]interface{}{"phone": phone, "hostel": hostel})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
