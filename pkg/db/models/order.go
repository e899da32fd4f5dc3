package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Order is the persisted result of a successful checkout. All monetary
// figures are snapshots of the cart summary at order time.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	Subtotal          decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null"`
	TaxAmount         decimal.Decimal     `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	ShippingAmount    decimal.Decimal     `gorm:"column:shipping_amount;type:numeric(10,2);not null;default:0"`
	DiscountAmount    decimal.Decimal     `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null"`
	ShippingAddress   types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress    types.Address       `gorm:"column:billing_address;type:jsonb;serializer:json"`
	ShippingMethod    enums.ShippingMethod `gorm:"column:shipping_method;not null"`
	PaymentMethod     string              `gorm:"column:payment_method;not null"`
	CouponCode        *string             `gorm:"column:coupon_code"`
	Notes             *string             `gorm:"column:notes"`
	EstimatedDelivery *time.Time          `gorm:"column:estimated_delivery"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
