package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// CartItem is one shopper-owned cart row referencing a catalog product.
// A (user_id, product_id) pair maps to a single row; adding the same product
// again merges quantities instead of creating a new line.
type CartItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_product"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_product"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	SelectedOptions types.SelectedOptions `gorm:"column:selected_options;type:jsonb"`
	Product         *Product              `gorm:"foreignKey:ProductID"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
