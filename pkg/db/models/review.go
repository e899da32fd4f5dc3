package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a shopper's product rating. One review per user per product.
type Review struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID    `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	ProductID uuid.UUID    `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	OrderID   *uuid.UUID   `gorm:"column:order_id;type:uuid"`
	Rating    int          `gorm:"column:rating;not null"`
	Title     string       `gorm:"column:title;not null"`
	Comment   *string      `gorm:"column:comment"`
	User      *UserProfile `gorm:"foreignKey:UserID"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
