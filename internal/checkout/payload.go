package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// BuildInput carries the checkout form alongside the validated cart state.
type BuildInput struct {
	UserID          uuid.UUID
	Items           []models.CartItem
	Summary         pricing.Summary
	ShippingAddress types.Address
	BillingAddress  types.Address
	PaymentMethod   string
	Notes           *string
}

// Builder assembles the order record from a validated cart. Line items copy
// the product name, SKU, and effective price at build time, so later catalog
// edits cannot rewrite the order. The builder does not persist anything.
type Builder struct {
	now func() time.Time
}

// NewBuilder constructs a payload builder. A nil clock defaults to time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build produces the unpersisted order. Callers are expected to have run
// Validator.Validate first; Build re-checks only the structural requirements.
func (b *Builder) Build(input BuildInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}
	if input.PaymentMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}
	if err := input.BillingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid billing address")
	}

	now := b.now()
	orderNumber, err := orders.NewOrderNumber(now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
	}

	order := &models.Order{
		ID:                uuid.New(),
		OrderNumber:       orderNumber,
		UserID:            input.UserID,
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		Subtotal:          input.Summary.Subtotal,
		TaxAmount:         input.Summary.Tax,
		ShippingAmount:    input.Summary.Shipping,
		DiscountAmount:    input.Summary.Discount,
		TotalAmount:       input.Summary.Total,
		ShippingAddress:   input.ShippingAddress,
		BillingAddress:    input.BillingAddress,
		ShippingMethod:    input.Summary.ShippingMethod,
		PaymentMethod:     input.PaymentMethod,
		CouponCode:        input.Summary.CouponCode,
		Notes:             input.Notes,
		EstimatedDelivery: orders.EstimatedDelivery(enums.OrderStatusPending, now),
	}

	order.Items = make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart item missing product")
		}
		unitPrice := item.Product.EffectivePrice()
		order.Items = append(order.Items, models.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       item.ProductID,
			ProductName:     item.Product.Name,
			ProductSKU:      item.Product.SKU,
			Quantity:        item.Quantity,
			UnitPrice:       unitPrice,
			TotalPrice:      unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			SelectedOptions: item.SelectedOptions,
		})
	}
	return order, nil
}
