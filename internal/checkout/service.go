package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const idempotencyScope = "checkout"

// PlaceOrderInput is the checkout form submitted with the cart.
type PlaceOrderInput struct {
	ShippingAddress types.Address
	BillingAddress  types.Address
	PaymentMethod   string
	Notes           *string
	IdempotencyKey  string
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	DB             *db.Client
	Validator      *Validator
	Builder        *Builder
	OrderRepo      *orders.Repository
	CouponRepo     *coupons.Repository
	ProductRepo    *products.Repository
	Idempotency    redisclient.IdempotencyStore
	IdempotencyTTL time.Duration
	Logger         *logger.Logger
}

// Service turns a validated cart into a persisted order.
type Service interface {
	PlaceOrder(ctx context.Context, store *cart.Store, input PlaceOrderInput) (*models.Order, error)
}

type service struct {
	db             *db.Client
	validator      *Validator
	builder        *Builder
	orderRepo      *orders.Repository
	couponRepo     *coupons.Repository
	productRepo    *products.Repository
	idempotency    redisclient.IdempotencyStore
	idempotencyTTL time.Duration
	logg           *logger.Logger
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Validator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validator is required")
	}
	if params.Builder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "builder is required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.CouponRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	ttl := params.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{
		db:             params.DB,
		validator:      params.Validator,
		builder:        params.Builder,
		orderRepo:      params.OrderRepo,
		couponRepo:     params.CouponRepo,
		productRepo:    params.ProductRepo,
		idempotency:    params.Idempotency,
		idempotencyTTL: ttl,
		logg:           params.Logger,
	}, nil
}

// PlaceOrder runs the full checkout: validate stock, assemble the payload,
// then in one transaction create the order and its items, decrement stock,
// and bump the coupon's redemption count. The cart is cleared only after the
// transaction commits; a failed checkout leaves the cart intact.
func (s *service) PlaceOrder(ctx context.Context, store *cart.Store, input PlaceOrderInput) (*models.Order, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}

	reservedKey, err := s.reserveIdempotencyKey(ctx, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	items := store.Items()
	if err := s.validator.Validate(ctx, items); err != nil {
		s.releaseIdempotencyKey(ctx, reservedKey)
		return nil, err
	}

	order, err := s.builder.Build(BuildInput{
		UserID:          store.UserID(),
		Items:           items,
		Summary:         store.Summary(),
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
	})
	if err != nil {
		s.releaseIdempotencyKey(ctx, reservedKey)
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range items {
			if err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if order.CouponCode != nil {
			if err := s.couponRepo.WithTx(tx).IncrementUsedCount(ctx, *order.CouponCode); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.releaseIdempotencyKey(ctx, reservedKey)
		if errors.Is(err, products.ErrInsufficientStock) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInsufficientStock, err, "placing order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, "order placed")

	s.recordIdempotencyResult(ctx, reservedKey, order.OrderNumber)

	// The order exists either way; a cart that fails to clear is recoverable
	// on the next load.
	if err := store.Clear(ctx); err != nil {
		s.logg.Warn(ctx, "clearing cart after checkout failed")
	}

	return order, nil
}

func (s *service) reserveIdempotencyKey(ctx context.Context, rawKey string) (string, error) {
	rawKey = strings.TrimSpace(rawKey)
	if s.idempotency == nil || rawKey == "" {
		return "", nil
	}

	key := s.idempotency.IdempotencyKey(idempotencyScope, rawKey)
	ok, err := s.idempotency.SetNX(ctx, key, "pending", s.idempotencyTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserving idempotency key")
	}
	if ok {
		return key, nil
	}

	previous, err := s.idempotency.Get(ctx, key)
	if err != nil && !errors.Is(err, redislib.Nil) {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading idempotency key")
	}
	details := map[string]any{}
	if previous != "" && previous != "pending" {
		details["order_number"] = previous
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "checkout already submitted").WithDetails(details)
}

func (s *service) recordIdempotencyResult(ctx context.Context, key, orderNumber string) {
	if s.idempotency == nil || key == "" {
		return
	}
	// Overwrite the pending marker so replays can surface the order number.
	if err := s.idempotency.Set(ctx, key, orderNumber, s.idempotencyTTL); err != nil {
		s.logg.Warn(ctx, "recording idempotency result failed")
	}
}

func (s *service) releaseIdempotencyKey(ctx context.Context, key string) {
	if s.idempotency == nil || key == "" {
		return
	}
	if err := s.idempotency.Del(ctx, key); err != nil {
		s.logg.Warn(ctx, "releasing idempotency key failed")
	}
}
