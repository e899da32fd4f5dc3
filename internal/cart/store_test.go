package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type stubRepo struct {
	items       map[uuid.UUID]*models.CartItem
	insertErr   error
	updateErr   error
	deleteCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: make(map[uuid.UUID]*models.CartItem)}
}

func (r *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubRepo) Insert(ctx context.Context, item *models.CartItem) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *stubRepo) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if item, ok := r.items[itemID]; ok {
		item.Quantity = quantity
	}
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, itemID uuid.UUID) error {
	r.deleteCalls++
	delete(r.items, itemID)
	return nil
}

func (r *stubRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
		}
	}
	return nil
}

type stubCoupons struct {
	coupon *models.Coupon
	err    error
}

func (c *stubCoupons) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.coupon, nil
}

func testRates() pricing.Rates {
	return pricing.Rates{
		TaxRate:               decimal.NewFromFloat(0.08),
		StandardRate:          decimal.NewFromFloat(5.99),
		StandardFreeThreshold: decimal.NewFromInt(50),
		ExpressRate:           decimal.NewFromFloat(15.99),
		ExpressFreeThreshold:  decimal.NewFromInt(100),
	}
}

func testProduct(price float64, stock int) models.Product {
	return models.Product{
		ID:            uuid.New(),
		Name:          "Widget",
		SKU:           "WID-1",
		Price:         decimal.NewFromFloat(price),
		StockQuantity: stock,
		IsActive:      true,
	}
}

func newTestStore(t *testing.T, repo Persistence, coupons CouponValidator) *Store {
	t.Helper()
	store, err := NewStore(StoreParams{
		UserID:     uuid.New(),
		Repo:       repo,
		Coupons:    coupons,
		Calculator: pricing.NewCalculator(testRates()),
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestNewStoreRequiresDependencies(t *testing.T) {
	repo := newStubRepo()
	coupons := &stubCoupons{}
	calc := pricing.NewCalculator(testRates())

	cases := []struct {
		name   string
		params StoreParams
	}{
		{"missing user", StoreParams{Repo: repo, Coupons: coupons, Calculator: calc}},
		{"missing repo", StoreParams{UserID: uuid.New(), Coupons: coupons, Calculator: calc}},
		{"missing coupons", StoreParams{UserID: uuid.New(), Repo: repo, Calculator: calc}},
		{"missing calculator", StoreParams{UserID: uuid.New(), Repo: repo, Coupons: coupons}},
	}
	for _, tc := range cases {
		if _, err := NewStore(tc.params); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestAddItemMergesByProductIgnoringOptions(t *testing.T) {
	store := newTestStore(t, newStubRepo(), &stubCoupons{})
	product := testProduct(10, 10)
	ctx := context.Background()

	if err := store.AddItem(ctx, product, 2, types.SelectedOptions{"size": "M"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddItem(ctx, product, 3, types.SelectedOptions{"size": "L"}); err != nil {
		t.Fatalf("add again: %v", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestAddItemRejectsMergeBeyondStock(t *testing.T) {
	store := newTestStore(t, newStubRepo(), &stubCoupons{})
	product := testProduct(10, 5)
	ctx := context.Background()

	if err := store.AddItem(ctx, product, 4, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := store.AddItem(ctx, product, 2, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := store.ItemQuantity(product.ID); got != 4 {
		t.Fatalf("expected quantity unchanged at 4, got %d", got)
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	store := newTestStore(t, newStubRepo(), &stubCoupons{})
	err := store.AddItem(context.Background(), testProduct(10, 5), 0, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateQuantityBoundedByStock(t *testing.T) {
	store := newTestStore(t, newStubRepo(), &stubCoupons{})
	product := testProduct(10, 5)
	ctx := context.Background()

	if err := store.AddItem(ctx, product, 2, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := store.Items()[0].ID

	err := store.UpdateQuantity(ctx, itemID, 6)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := store.Items()[0].Quantity; got != 2 {
		t.Fatalf("expected quantity unchanged at 2, got %d", got)
	}

	if err := store.UpdateQuantity(ctx, itemID, 5); err != nil {
		t.Fatalf("update to stock limit: %v", err)
	}
	if got := store.Items()[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
}

func TestUpdateQuantityValidation(t *testing.T) {
	store := newTestStore(t, newStubRepo(), &stubCoupons{})
	ctx := context.Background()

	if err := store.UpdateQuantity(ctx, uuid.New(), 0); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for quantity 0, got %v", err)
	}
	if err := store.UpdateQuantity(ctx, uuid.New(), 1); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	store := newTestStore(t, repo, &stubCoupons{})
	ctx := context.Background()

	if err := store.AddItem(ctx, testProduct(10, 5), 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := store.Items()[0].ID

	if err := store.RemoveItem(ctx, itemID); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := store.RemoveItem(ctx, itemID); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected one repo delete, got %d", repo.deleteCalls)
	}
	if len(store.Items()) != 0 {
		t.Fatal("expected empty cart")
	}
}

func TestClearDropsCouponKeepsShippingMethod(t *testing.T) {
	coupon := &models.Coupon{
		Code:          "SAVE10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
	}
	store := newTestStore(t, newStubRepo(), &stubCoupons{coupon: coupon})
	ctx := context.Background()

	if err := store.AddItem(ctx, testProduct(20, 5), 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.ApplyCoupon(ctx, "SAVE10"); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if err := store.SetShippingMethod(enums.ShippingMethodExpress); err != nil {
		t.Fatalf("set shipping: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.Coupon() != nil {
		t.Fatal("expected coupon cleared")
	}
	if got := store.ShippingMethod(); got != enums.ShippingMethodExpress {
		t.Fatalf("expected shipping method retained, got %s", got)
	}
	if len(store.Items()) != 0 {
		t.Fatal("expected items cleared")
	}
}

func TestRemoveCouponZeroesDiscount(t *testing.T) {
	coupon := &models.Coupon{
		Code:          "SAVE10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
	}
	store := newTestStore(t, newStubRepo(), &stubCoupons{coupon: coupon})
	ctx := context.Background()

	if err := store.AddItem(ctx, testProduct(100, 5), 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.ApplyCoupon(ctx, "SAVE10"); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if store.Summary().Discount.IsZero() {
		t.Fatal("expected nonzero discount with coupon applied")
	}

	store.RemoveCoupon()
	if !store.Summary().Discount.IsZero() {
		t.Fatal("expected zero discount after coupon removal")
	}
}

func TestApplyCouponPropagatesValidationError(t *testing.T) {
	wantErr := pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon expired")
	store := newTestStore(t, newStubRepo(), &stubCoupons{err: wantErr})

	err := store.ApplyCoupon(context.Background(), "EXPIRED")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected validator error passthrough, got %v", err)
	}
	if store.Coupon() != nil {
		t.Fatal("expected no coupon stored on failure")
	}
}

func TestSetShippingMethodRejectsUnknown(t *testing.T) {
	store := newTestStore(t, newStubRepo(), &stubCoupons{})
	if err := store.SetShippingMethod(enums.ShippingMethod("overnight")); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSummaryRecomputesAfterMutation(t *testing.T) {
	store := newTestStore(t, newStubRepo(), &stubCoupons{})
	product := testProduct(10, 10)
	ctx := context.Background()

	if err := store.AddItem(ctx, product, 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	first := store.Summary()
	if !first.Subtotal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected subtotal 10, got %s", first.Subtotal)
	}

	itemID := store.Items()[0].ID
	if err := store.UpdateQuantity(ctx, itemID, 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	second := store.Summary()
	if !second.Subtotal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected subtotal 30 after mutation, got %s", second.Subtotal)
	}
	if second.UnitCount != 3 || second.ItemCount != 1 {
		t.Fatalf("unexpected counts: items=%d units=%d", second.ItemCount, second.UnitCount)
	}
}

func TestAddItemStateUnchangedWhenPersistenceFails(t *testing.T) {
	repo := newStubRepo()
	repo.insertErr = errors.New("connection reset")
	store := newTestStore(t, repo, &stubCoupons{})

	err := store.AddItem(context.Background(), testProduct(10, 5), 1, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(store.Items()) != 0 {
		t.Fatal("expected in-memory state untouched after persistence failure")
	}
}
