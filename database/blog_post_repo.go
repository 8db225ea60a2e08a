package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"gorm.io/gorm"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

func (r *BlogPostRepo) filtered(ctx context.Context, filter models.BlogPostFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.BlogPost{})
	if filter.Published != nil {
		query = query.Where("published = ?", *filter.Published)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(title ILIKE ? OR excerpt ILIKE ?)", pattern, pattern)
	}
	return query
}

// FindAll returns limit posts matching filter starting at offset, newest
// first, without their content, plus the number of matching posts.
func (r *BlogPostRepo) FindAll(ctx context.Context, filter models.BlogPostFilter, limit, offset int) ([]models.BlogPost, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []models.BlogPost{}
	err := r.filtered(ctx, filter).
		Preload("Author").
		Omit("content").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

// FindByID returns a blog post by its ID, published or not
func (r *BlogPostRepo) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("blog post")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindPublishedBySlug returns a published blog post by slug
func (r *BlogPostRepo) FindPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Where("slug = ? AND published = ?", slug, true).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("blog post")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// SlugTaken reports whether a post other than excludeID already uses slug.
// Pass 0 to check against every post.
func (r *BlogPostRepo) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

// IncrementViews adds one view without touching updated_at
func (r *BlogPostRepo) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// FindRelated returns up to limit published posts sharing post's category, newest first
func (r *BlogPostRepo) FindRelated(ctx context.Context, post *models.BlogPost, limit int) ([]models.BlogPost, error) {
	related := []models.BlogPost{}
	if post.Category == "" {
		return related, nil
	}

	err := r.db.WithContext(ctx).
		Omit("content").
		Where("published = ? AND category = ? AND id <> ?", true, post.Category, post.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&related).Error
	return related, err
}

// Categories lists categories of published posts with their post counts, largest first
func (r *BlogPostRepo) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	categories := []models.CategoryCount{}
	err := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Select("category, COUNT(*) AS count").
		Where("published = ? AND category <> ''", true).
		Group("category").
		Order("count DESC").
		Scan(&categories).Error
	return categories, err
}

// Count returns the number of posts matching published (nil counts all)
func (r *BlogPostRepo) Count(ctx context.Context, published *bool) (int64, error) {
	var total int64
	err := r.filtered(ctx, models.BlogPostFilter{Published: published}).Count(&total).Error
	return total, err
}

// Add inserts a new blog post into the database
func (r *BlogPostRepo) Add(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

// Update applies the non-nil fields of patch, refreshes updated_at and
// returns the stored post.
func (r *BlogPostRepo) Update(ctx context.Context, id uint, patch models.BlogPostPatch) (*models.BlogPost, error) {
	updates := BuildUpdates(patch)
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewNotFound("blog post")
	}

	return r.FindByID(ctx, id)
}

// Delete removes a blog post from the database by id
func (r *BlogPostRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("blog post")
	}
	return nil
}
