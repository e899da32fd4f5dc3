package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/pricing"
)

func TestManagerReusesStorePerUser(t *testing.T) {
	repo := &stubRepo{}
	mgr, err := NewManager(ManagerParams{
		Repo:       repo,
		Coupons:    &stubCoupons{},
		Calculator: pricing.NewCalculator(testRates()),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	userID := uuid.New()
	first, err := mgr.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("for user: %v", err)
	}
	second, err := mgr.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("for user again: %v", err)
	}
	if first != second {
		t.Fatal("expected the same store instance for one user")
	}

	other, err := mgr.ForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("for other user: %v", err)
	}
	if other == first {
		t.Fatal("expected distinct stores per user")
	}
}

func TestManagerRequiresUserID(t *testing.T) {
	mgr, err := NewManager(ManagerParams{
		Repo:       &stubRepo{},
		Coupons:    &stubCoupons{},
		Calculator: pricing.NewCalculator(testRates()),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := mgr.ForUser(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil user id")
	}
}
