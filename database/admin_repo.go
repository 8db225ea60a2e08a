package database

import (
	"context"
	"errors"

	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"gorm.io/gorm"
)

type AdminRepo struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) *AdminRepo {
	return &AdminRepo{db}
}

// FindActiveByUsername returns the active admin with the given username
func (r *AdminRepo) FindActiveByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).
		Where("username = ? AND active = ?", username, true).
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("admin")
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Add inserts a new admin. The password must already be hashed.
func (r *AdminRepo) Add(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// Count returns the number of admins, active or not
func (r *AdminRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&total).Error
	return total, err
}
