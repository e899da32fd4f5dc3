package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Coupon is a promotion code owned by the catalog side of the store.
// MaximumDiscountAmount caps percentage discounts; fixed discounts apply
// their value as-is.
type Coupon struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code                  string             `gorm:"column:code;not null;uniqueIndex"`
	Name                  string             `gorm:"column:name;not null"`
	DiscountType          enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue         decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	MaximumDiscountAmount *decimal.Decimal   `gorm:"column:maximum_discount_amount;type:numeric(10,2)"`
	MinimumOrderAmount    decimal.Decimal    `gorm:"column:minimum_order_amount;type:numeric(10,2);not null;default:0"`
	ValidFrom             time.Time          `gorm:"column:valid_from;not null"`
	ValidUntil            time.Time          `gorm:"column:valid_until;not null"`
	UsageLimit            *int               `gorm:"column:usage_limit"`
	UsedCount             int                `gorm:"column:used_count;not null;default:0"`
	IsActive              bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
