package database

import (
	"context"
	"errors"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"gorm.io/gorm"
)

type ReviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) *ReviewRepo {
	return &ReviewRepo{db}
}

func (r *ReviewRepo) scoped(ctx context.Context, approved *bool) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Review{})
	if approved != nil {
		query = query.Where("approved = ?", *approved)
	}
	return query
}

// Add inserts a review. Approved is always stored as false.
func (r *ReviewRepo) Add(ctx context.Context, review *models.Review) error {
	review.Approved = false
	return r.db.WithContext(ctx).Create(review).Error
}

// FindByID returns a review by its ID
func (r *ReviewRepo) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("review")
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FindPage returns one page of reviews, newest first. A nil approved lists every review.
func (r *ReviewRepo) FindPage(ctx context.Context, page Page, approved *bool) ([]models.Review, int64, error) {
	var total int64
	if err := r.scoped(ctx, approved).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	reviews := []models.Review{}
	err := r.scoped(ctx, approved).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&reviews).Error
	return reviews, total, err
}

// Count returns the number of reviews matching approved (nil counts all)
func (r *ReviewRepo) Count(ctx context.Context, approved *bool) (int64, error) {
	var total int64
	err := r.scoped(ctx, approved).Count(&total).Error
	return total, err
}

// Approve marks a review approved and returns its current state. Approving an
// approved review changes nothing.
func (r *ReviewRepo) Approve(ctx context.Context, id uint) (*models.Review, error) {
	review, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.Approved {
		return review, nil
	}

	approved := true
	updates := BuildUpdates(models.ReviewPatch{Approved: &approved})
	updates["updated_at"] = time.Now()
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// Stats aggregates approved reviews by rating
func (r *ReviewRepo) Stats(ctx context.Context) (models.ReviewStats, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.scoped(ctx, boolPtr(true)).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return models.ReviewStats{}, err
	}

	stats := models.ReviewStats{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int64
	for _, row := range rows {
		stats.Distribution[row.Rating] = row.Count
		stats.Total += row.Count
		sum += int64(row.Rating) * row.Count
	}
	if stats.Total > 0 {
		stats.Average = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}

// Delete removes a review from the database by id
func (r *ReviewRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("review")
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
