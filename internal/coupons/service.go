package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// ServiceParams groups dependencies for the coupon service.
type ServiceParams struct {
	Repo *Repository
	Now  func() time.Time
}

// Service validates coupon codes against cart subtotals.
type Service interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds a coupon service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

// Validate checks a code for applicability: the coupon must exist, be active,
// be inside its validity window, be under its usage limit, and the subtotal
// must meet its minimum order amount.
func (s *service) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "invalid coupon code")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "invalid coupon code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading coupon")
	}

	now := s.now()
	switch {
	case !coupon.IsActive:
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "invalid coupon code")
	case now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil):
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon has expired")
	case coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit:
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon usage limit reached")
	case subtotal.LessThan(coupon.MinimumOrderAmount):
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "minimum order amount not met").
			WithDetails(map[string]any{
				"minimum_order_amount": coupon.MinimumOrderAmount,
				"subtotal":             subtotal,
			})
	}

	return coupon, nil
}
