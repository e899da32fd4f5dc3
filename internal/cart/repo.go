package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository encapsulates cart row persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListByUser fetches all cart rows for a user with their products preloaded.
// A user with no rows gets an empty slice, not an error.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, gorm.ErrInvalidValue
	}

	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).
		Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Insert creates a cart row. The (user_id, product_id) unique index rejects
// a second row for the same product.
func (r *Repository) Insert(ctx context.Context, item *models.CartItem) error {
	if item == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateQuantity sets the quantity of an existing cart row.
func (r *Repository) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if itemID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).
		Error
}

// Delete removes a cart row. Deleting an absent row is not an error.
func (r *Repository) Delete(ctx context.Context, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartItem{}).
		Error
}

// DeleteAllForUser empties a user's persisted cart.
func (r *Repository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).
		Error
}
