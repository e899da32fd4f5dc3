package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

const orderNumberSuffixLen = 6

var orderNumberCharset = []byte("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo *Repository
	Now  func() time.Time
}

// Service exposes order reads and tracking helpers. Order creation goes
// through the checkout service, which owns the placing transaction.
type Service interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error)
	Timeline(order *models.Order) []enums.OrderStatus
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return orders, nil
}

func (s *service) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) GetByNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// Timeline returns the happy-path statuses up to and including the order's
// current status. Cancelled and refunded orders get their terminal status
// appended after the progress made so far.
func (s *service) Timeline(order *models.Order) []enums.OrderStatus {
	if order == nil {
		return nil
	}
	for i, status := range enums.FulfillmentTimeline {
		if order.Status == status {
			return enums.FulfillmentTimeline[:i+1]
		}
	}
	return []enums.OrderStatus{enums.OrderStatusPending, order.Status}
}

// EstimatedDelivery projects a delivery date from the order status: a week
// out for new orders, five days once processing, two days once shipped.
// Delivered and terminal orders get no estimate.
func EstimatedDelivery(status enums.OrderStatus, from time.Time) *time.Time {
	var days int
	switch status {
	case enums.OrderStatusPending, enums.OrderStatusConfirmed:
		days = 7
	case enums.OrderStatusProcessing:
		days = 5
	case enums.OrderStatusShipped:
		days = 2
	default:
		return nil
	}
	estimate := from.AddDate(0, 0, days)
	return &estimate
}

// NewOrderNumber builds a customer-facing order number: ORD-YYYYMMDD-XXXXXX.
// The suffix alphabet drops easily confused characters.
func NewOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, orderNumberSuffixLen)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generating order number: %w", err)
	}
	for i := range suffix {
		suffix[i] = orderNumberCharset[int(suffix[i])%len(orderNumberCharset)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
}
