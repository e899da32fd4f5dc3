package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Persistence is the narrow repository surface the store mirrors mutations to.
type Persistence interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Insert(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, itemID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// CouponValidator checks a code against the current subtotal.
type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, error)
}

// StoreParams groups dependencies for a per-session cart store.
type StoreParams struct {
	UserID     uuid.UUID
	Repo       Persistence
	Coupons    CouponValidator
	Calculator *pricing.Calculator
}

// Store is the authoritative in-memory cart for one shopper session. There is
// no process-wide instance: each session constructs its own store. All
// operations serialize through a single mutex, so two rapid mutations on the
// same cart apply one after the other instead of racing. In-memory state only
// changes after the corresponding repository call succeeds.
//
// The applied coupon and shipping method are session state: the coupon is
// dropped when the cart is cleared, the shipping method survives it.
type Store struct {
	mu sync.Mutex

	userID     uuid.UUID
	repo       Persistence
	coupons    CouponValidator
	calculator *pricing.Calculator

	items    []models.CartItem
	coupon   *models.Coupon
	shipping enums.ShippingMethod
}

// NewStore builds a cart store for a single user session.
func NewStore(params StoreParams) (*Store, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Coupons == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon validator is required")
	}
	if params.Calculator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "calculator is required")
	}
	return &Store{
		userID:     params.UserID,
		repo:       params.Repo,
		coupons:    params.Coupons,
		calculator: params.Calculator,
		shipping:   enums.ShippingMethodStandard,
	}, nil
}

// Load replaces in-memory items wholesale with the user's persisted rows.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.ListByUser(ctx, s.userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart items")
	}
	s.items = items
	return nil
}

// AddItem inserts a product or merges quantity into the existing line for the
// same product. Merging ignores selected options: one product maps to one
// line regardless of option differences.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity int, options types.SelectedOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	existing := s.findByProduct(product.ID)
	merged := quantity
	if existing != nil {
		merged += existing.Quantity
	}
	if merged > product.StockQuantity {
		return insufficientStock(product.Name, product.StockQuantity, merged)
	}

	if existing != nil {
		if err := s.repo.UpdateQuantity(ctx, existing.ID, merged); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating cart item")
		}
		existing.Quantity = merged
		return nil
	}

	item := models.CartItem{
		ID:              uuid.New(),
		UserID:          s.userID,
		ProductID:       product.ID,
		Quantity:        quantity,
		SelectedOptions: options,
		Product:         &product,
	}
	if err := s.repo.Insert(ctx, &item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inserting cart item")
	}
	s.items = append(s.items, item)
	return nil
}

// UpdateQuantity sets a line's quantity, bounded by the product's stock.
// Failures leave the line unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	item := s.findByID(itemID)
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if item.Product != nil && quantity > item.Product.StockQuantity {
		return insufficientStock(item.Product.Name, item.Product.StockQuantity, quantity)
	}

	if err := s.repo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating cart item")
	}
	item.Quantity = quantity
	return nil
}

// RemoveItem drops a line. Removing an absent line succeeds.
func (s *Store) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByID(itemID) == nil {
		return nil
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting cart item")
	}

	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return nil
}

// Clear empties the cart and drops the applied coupon. The shipping method
// selection is retained.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteAllForUser(ctx, s.userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	s.items = nil
	s.coupon = nil
	return nil
}

// ApplyCoupon validates the code against the current subtotal and stores the
// coupon. A newly applied coupon replaces any prior one.
func (s *Store) ApplyCoupon(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coupon, err := s.coupons.Validate(ctx, code, s.calculator.Subtotal(s.lines()))
	if err != nil {
		return err
	}
	s.coupon = coupon
	return nil
}

// RemoveCoupon clears the applied coupon unconditionally.
func (s *Store) RemoveCoupon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupon = nil
}

// SetShippingMethod stores the shipping selection. It is session-local state,
// never persisted.
func (s *Store) SetShippingMethod(method enums.ShippingMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown shipping method %q", method))
	}
	s.shipping = method
	return nil
}

// Summary recomputes the full monetary breakdown from current state. Nothing
// is cached between calls.
func (s *Store) Summary() pricing.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calculator.Summarize(s.lines(), s.couponTerms(), s.shipping)
}

// Items returns a copy of the current lines.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// Coupon returns the applied coupon, or nil.
func (s *Store) Coupon() *models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupon
}

// ShippingMethod returns the current shipping selection.
func (s *Store) ShippingMethod() enums.ShippingMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipping
}

// ItemQuantity returns the cart quantity for a product, zero if absent.
func (s *Store) ItemQuantity(productID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByProduct(productID); item != nil {
		return item.Quantity
	}
	return 0
}

// Contains reports whether the product has a line in the cart.
func (s *Store) Contains(productID uuid.UUID) bool {
	return s.ItemQuantity(productID) > 0
}

// UserID returns the owning user.
func (s *Store) UserID() uuid.UUID {
	return s.userID
}

func (s *Store) findByID(itemID uuid.UUID) *models.CartItem {
	for i := range s.items {
		if s.items[i].ID == itemID {
			return &s.items[i]
		}
	}
	return nil
}

func (s *Store) findByProduct(productID uuid.UUID) *models.CartItem {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return &s.items[i]
		}
	}
	return nil
}

func (s *Store) lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(s.items))
	for _, item := range s.items {
		if item.Product == nil {
			continue
		}
		lines = append(lines, pricing.Line{
			ProductID: item.ProductID,
			UnitPrice: item.Product.EffectivePrice(),
			Quantity:  item.Quantity,
		})
	}
	return lines
}

func (s *Store) couponTerms() *pricing.CouponTerms {
	if s.coupon == nil {
		return nil
	}
	return &pricing.CouponTerms{
		Code:            s.coupon.Code,
		Type:            s.coupon.DiscountType,
		Value:           s.coupon.DiscountValue,
		MaximumDiscount: s.coupon.MaximumDiscountAmount,
	}
}

func insufficientStock(productName string, stock, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", productName)).
		WithDetails(map[string]any{
			"product":   productName,
			"stock":     stock,
			"requested": requested,
		})
}
