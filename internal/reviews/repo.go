package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Stats aggregates ratings for one product.
type Stats struct {
	Count         int64   `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

// Repository encapsulates review persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a review repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert creates a review. The unique (user_id, product_id) index enforces
// one review per shopper per product.
func (r *Repository) Insert(ctx context.Context, review *models.Review) error {
	if review == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(review).Error
}

// FindByID loads a single review.
func (r *Repository) FindByID(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ?", reviewID).
		First(&review).
		Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Update saves rating, title, and comment from the provided review.
func (r *Repository) Update(ctx context.Context, review *models.Review) error {
	if review == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]any{
			"rating":  review.Rating,
			"title":   review.Title,
			"comment": review.Comment,
		}).
		Error
}

// Delete removes a review.
func (r *Repository) Delete(ctx context.Context, reviewID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", reviewID).
		Delete(&models.Review{}).
		Error
}

// ListByProduct returns reviews for a product newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var reviews []models.Review
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// StatsByProduct aggregates count and average rating for a product.
func (r *Repository) StatsByProduct(ctx context.Context, productID uuid.UUID) (Stats, error) {
	var stats Stats
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average_rating").
		Where("product_id = ?", productID).
		Scan(&stats).
		Error
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}
