package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubProductService struct {
	products   []models.Product
	lastFilter productsvc.ListFilter
}

func (s *stubProductService) List(_ context.Context, filter productsvc.ListFilter) ([]models.Product, error) {
	s.lastFilter = filter
	return s.products, nil
}

func (s *stubProductService) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubProductService) ListCategories(context.Context) ([]models.Category, error) {
	return nil, nil
}

func TestListProductsAppliesFilters(t *testing.T) {
	svc := &stubProductService{products: []models.Product{{
		ID:    uuid.New(),
		Name:  "Mug",
		Price: decimal.NewFromInt(12),
	}}}

	req := httptest.NewRequest(http.MethodGet, "/products?min_price=5&max_price=20&search=mug&featured=true&sort=price_asc", nil)
	rec := httptest.NewRecorder()

	ListProducts(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastFilter.MinPrice == nil || !svc.lastFilter.MinPrice.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected min price filter, got %v", svc.lastFilter.MinPrice)
	}
	if svc.lastFilter.Search != "mug" || !svc.lastFilter.FeaturedOnly || svc.lastFilter.Sort != "price_asc" {
		t.Fatalf("unexpected filter: %+v", svc.lastFilter)
	}

	var envelope struct {
		Data []models.Product `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Mug" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestListProductsRejectsBadPrice(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?min_price=abc", nil)
	rec := httptest.NewRecorder()

	ListProducts(&stubProductService{}, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/products/{productID}", GetProduct(&stubProductService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %q", envelope.Error.Code)
	}
}

func TestGetProductRejectsBadID(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/products/{productID}", GetProduct(&stubProductService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
