package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// Rates collects the configured tax and shipping knobs.
type Rates struct {
	TaxRate               decimal.Decimal
	StandardRate          decimal.Decimal
	StandardFreeThreshold decimal.Decimal
	ExpressRate           decimal.Decimal
	ExpressFreeThreshold  decimal.Decimal
}

// RatesFromConfig converts the env-sourced pricing config into decimals.
func RatesFromConfig(cfg config.PricingConfig) Rates {
	return Rates{
		TaxRate:               decimal.NewFromFloat(cfg.TaxRate),
		StandardRate:          decimal.NewFromFloat(cfg.StandardShippingRate),
		StandardFreeThreshold: decimal.NewFromFloat(cfg.StandardFreeThreshold),
		ExpressRate:           decimal.NewFromFloat(cfg.ExpressShippingRate),
		ExpressFreeThreshold:  decimal.NewFromFloat(cfg.ExpressFreeThreshold),
	}
}

// Line is a priced cart row: the effective unit price times a quantity.
type Line struct {
	ProductID uuid.UUID
	UnitPrice decimal.Decimal
	Quantity  int
}

// CouponTerms carries the discount-relevant fields of an applied coupon.
type CouponTerms struct {
	Code            string
	Type            enums.DiscountType
	Value           decimal.Decimal
	MaximumDiscount *decimal.Decimal
}

// Summary is the full monetary breakdown of a cart. It is derived state:
// recomputed on every call and never cached, so it cannot go stale across
// mutations.
type Summary struct {
	ItemCount      int                  `json:"item_count"`
	UnitCount      int                  `json:"unit_count"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Discount       decimal.Decimal      `json:"discount"`
	Tax            decimal.Decimal      `json:"tax"`
	Shipping       decimal.Decimal      `json:"shipping"`
	Total          decimal.Decimal      `json:"total"`
	CouponCode     *string              `json:"coupon_code,omitempty"`
	ShippingMethod enums.ShippingMethod `json:"shipping_method"`
}

// Calculator evaluates cart totals. It is pure: no persistence, no side
// effects, safe to share across goroutines.
type Calculator struct {
	rates Rates
}

// NewCalculator builds a calculator for the provided rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Subtotal sums unit price times quantity across all lines.
func (c *Calculator) Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Discount computes the coupon reduction against the subtotal. Percentage
// discounts are capped by the coupon's maximum discount amount when one is
// set. Fixed discounts apply their value uncapped, so a fixed coupon larger
// than the subtotal yields a negative taxable amount; callers asked for that
// behavior to be preserved rather than clamped.
func (c *Calculator) Discount(lines []Line, coupon *CouponTerms) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}

	subtotal := c.Subtotal(lines)
	if coupon.Type == enums.DiscountTypePercentage {
		discount := subtotal.Mul(coupon.Value.Div(oneHundred)).Round(2)
		if coupon.MaximumDiscount != nil {
			return decimal.Min(discount, *coupon.MaximumDiscount)
		}
		return discount
	}
	return coupon.Value
}

// TaxableAmount is subtotal minus discount, the base for both tax and the
// free-shipping comparison.
func (c *Calculator) TaxableAmount(lines []Line, coupon *CouponTerms) decimal.Decimal {
	return c.Subtotal(lines).Sub(c.Discount(lines, coupon))
}

// Tax applies the configured rate to the taxable amount, even when that
// amount is negative.
func (c *Calculator) Tax(lines []Line, coupon *CouponTerms) decimal.Decimal {
	return c.TaxableAmount(lines, coupon).Mul(c.rates.TaxRate).Round(2)
}

// Shipping charges the method's flat rate unless the taxable amount strictly
// exceeds the method's free threshold.
func (c *Calculator) Shipping(lines []Line, coupon *CouponTerms, method enums.ShippingMethod) decimal.Decimal {
	taxable := c.TaxableAmount(lines, coupon)

	switch method {
	case enums.ShippingMethodExpress:
		if taxable.GreaterThan(c.rates.ExpressFreeThreshold) {
			return decimal.Zero
		}
		return c.rates.ExpressRate
	default:
		if taxable.GreaterThan(c.rates.StandardFreeThreshold) {
			return decimal.Zero
		}
		return c.rates.StandardRate
	}
}

// Total is subtotal minus discount plus tax plus shipping.
func (c *Calculator) Total(lines []Line, coupon *CouponTerms, method enums.ShippingMethod) decimal.Decimal {
	return c.TaxableAmount(lines, coupon).
		Add(c.Tax(lines, coupon)).
		Add(c.Shipping(lines, coupon, method))
}

// Summarize bundles every figure plus line/unit counts into one snapshot.
func (c *Calculator) Summarize(lines []Line, coupon *CouponTerms, method enums.ShippingMethod) Summary {
	units := 0
	for _, line := range lines {
		units += line.Quantity
	}

	summary := Summary{
		ItemCount:      len(lines),
		UnitCount:      units,
		Subtotal:       c.Subtotal(lines),
		Discount:       c.Discount(lines, coupon),
		Tax:            c.Tax(lines, coupon),
		Shipping:       c.Shipping(lines, coupon, method),
		Total:          c.Total(lines, coupon, method),
		ShippingMethod: method,
	}
	if coupon != nil {
		code := coupon.Code
		summary.CouponCode = &code
	}
	return summary
}
