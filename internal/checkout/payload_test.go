package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

func testAddress() types.Address {
	return types.Address{
		Line1:      "123 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func buildInputFixture() BuildInput {
	sale := decimal.NewFromFloat(8.50)
	product := models.Product{
		ID:            uuid.New(),
		Name:          "Ceramic Mug",
		SKU:           "MUG-01",
		Price:         decimal.NewFromInt(10),
		SalePrice:     &sale,
		StockQuantity: 10,
	}
	items := []models.CartItem{{
		ID:        uuid.New(),
		ProductID: product.ID,
		Quantity:  2,
		Product:   &product,
	}}

	code := "SAVE10"
	return BuildInput{
		UserID: uuid.New(),
		Items:  items,
		Summary: pricing.Summary{
			ItemCount:      1,
			UnitCount:      2,
			Subtotal:       decimal.NewFromInt(17),
			Discount:       decimal.NewFromFloat(1.70),
			Tax:            decimal.NewFromFloat(1.22),
			Shipping:       decimal.NewFromFloat(5.99),
			Total:          decimal.NewFromFloat(22.51),
			CouponCode:     &code,
			ShippingMethod: enums.ShippingMethodStandard,
		},
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "card",
	}
}

func TestBuildSnapshotsLineItems(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	builder := NewBuilder(func() time.Time { return now })

	input := buildInputFixture()
	order, err := builder.Build(input)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(order.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(order.Items))
	}
	line := order.Items[0]
	if line.ProductName != "Ceramic Mug" || line.ProductSKU != "MUG-01" {
		t.Fatalf("expected snapshot of name/sku, got %s/%s", line.ProductName, line.ProductSKU)
	}
	if !line.UnitPrice.Equal(decimal.NewFromFloat(8.50)) {
		t.Fatalf("expected effective (sale) price 8.50, got %s", line.UnitPrice)
	}
	if !line.TotalPrice.Equal(decimal.NewFromFloat(17)) {
		t.Fatalf("expected line total 17, got %s", line.TotalPrice)
	}

	// Mutating the catalog after build must not alter the payload.
	input.Items[0].Product.Name = "Renamed"
	input.Items[0].Product.Price = decimal.NewFromInt(99)
	if order.Items[0].ProductName != "Ceramic Mug" {
		t.Fatal("payload line item changed after catalog mutation")
	}
	if !order.Items[0].UnitPrice.Equal(decimal.NewFromFloat(8.50)) {
		t.Fatal("payload unit price changed after catalog mutation")
	}
}

func TestBuildCopiesMonetaryBreakdown(t *testing.T) {
	builder := NewBuilder(nil)
	input := buildInputFixture()

	order, err := builder.Build(input)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !order.Subtotal.Equal(input.Summary.Subtotal) ||
		!order.DiscountAmount.Equal(input.Summary.Discount) ||
		!order.TaxAmount.Equal(input.Summary.Tax) ||
		!order.ShippingAmount.Equal(input.Summary.Shipping) ||
		!order.TotalAmount.Equal(input.Summary.Total) {
		t.Fatal("monetary breakdown does not match the summary")
	}
	if order.CouponCode == nil || *order.CouponCode != "SAVE10" {
		t.Fatalf("expected coupon code SAVE10, got %v", order.CouponCode)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatal("expected a fresh order to start pending")
	}
}

func TestBuildSetsEstimatedDelivery(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	builder := NewBuilder(func() time.Time { return now })

	order, err := builder.Build(buildInputFixture())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if order.EstimatedDelivery == nil {
		t.Fatal("expected an estimated delivery for a pending order")
	}
	if want := now.AddDate(0, 0, 7); !order.EstimatedDelivery.Equal(want) {
		t.Fatalf("expected estimate %s, got %s", want, order.EstimatedDelivery)
	}
}

func TestBuildValidation(t *testing.T) {
	builder := NewBuilder(nil)

	empty := buildInputFixture()
	empty.Items = nil
	if _, err := builder.Build(empty); !pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}

	noUser := buildInputFixture()
	noUser.UserID = uuid.Nil
	if _, err := builder.Build(noUser); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}

	noPayment := buildInputFixture()
	noPayment.PaymentMethod = ""
	if _, err := builder.Build(noPayment); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing payment method, got %v", err)
	}

	badAddress := buildInputFixture()
	badAddress.ShippingAddress = types.Address{}
	if _, err := builder.Build(badAddress); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad address, got %v", err)
	}
}
