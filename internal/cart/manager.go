package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/pkg/pricing"
)

// ManagerParams groups the shared dependencies handed to every session store.
type ManagerParams struct {
	Repo       Persistence
	Coupons    CouponValidator
	Calculator *pricing.Calculator
}

// Manager hands out the per-session store for each shopper. The first request
// for a user builds the store and hydrates it from the repository; later
// requests reuse the same instance so mutations keep serializing through one
// mutex.
type Manager struct {
	mu     sync.Mutex
	stores map[uuid.UUID]*Store

	repo       Persistence
	coupons    CouponValidator
	calculator *pricing.Calculator
}

// NewManager constructs a session store registry.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Coupons == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon validator is required")
	}
	if params.Calculator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "calculator is required")
	}
	return &Manager{
		stores:     map[uuid.UUID]*Store{},
		repo:       params.Repo,
		coupons:    params.Coupons,
		calculator: params.Calculator,
	}, nil
}

// ForUser returns the user's session store, creating and loading it on first
// use.
func (m *Manager) ForUser(ctx context.Context, userID uuid.UUID) (*Store, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	m.mu.Lock()
	store, ok := m.stores[userID]
	m.mu.Unlock()
	if ok {
		return store, nil
	}

	store, err := NewStore(StoreParams{
		UserID:     userID,
		Repo:       m.repo,
		Coupons:    m.coupons,
		Calculator: m.calculator,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.stores[userID]; ok {
		return existing, nil
	}
	m.stores[userID] = store
	return store, nil
}
