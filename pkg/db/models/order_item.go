package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// OrderItem captures a product snapshot at order time. Name, SKU, and prices
// are copied from the catalog so later edits cannot rewrite order history.
type OrderItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string                `gorm:"column:product_name;not null"`
	ProductSKU      string                `gorm:"column:product_sku;not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal       `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice      decimal.Decimal       `gorm:"column:total_price;type:numeric(10,2);not null"`
	SelectedOptions types.SelectedOptions `gorm:"column:selected_options;type:jsonb"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}
