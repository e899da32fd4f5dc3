package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Prices are dollars with cents,
// stored as numeric(10,2).
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string           `gorm:"column:name;not null"`
	SKU           string           `gorm:"column:sku;not null;uniqueIndex"`
	Description   *string          `gorm:"column:description"`
	CategoryID    *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	SalePrice     *decimal.Decimal `gorm:"column:sale_price;type:numeric(10,2)"`
	StockQuantity int              `gorm:"column:stock_quantity;not null;default:0"`
	ImageURL      *string          `gorm:"column:image_url"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured    bool             `gorm:"column:is_featured;not null;default:false"`
	Category      *Category        `gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the sale price when one is set strictly below the
// list price, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}
