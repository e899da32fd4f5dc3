package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}))
	return db
}

type seedParams struct {
	name       string
	price      float64
	featured   bool
	active     bool
	categoryID *uuid.UUID
	desc       string
	stock      int
}

func seed(t *testing.T, db *gorm.DB, params seedParams) models.Product {
	t.Helper()
	product := models.Product{
		ID:            uuid.New(),
		Name:          params.name,
		SKU:           uuid.NewString(),
		Price:         decimal.NewFromFloat(params.price),
		StockQuantity: 10,
		IsActive:      params.active,
		IsFeatured:    params.featured,
		CategoryID:    params.categoryID,
	}
	if params.stock != 0 {
		product.StockQuantity = params.stock
	}
	if params.desc != "" {
		product.Description = &params.desc
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestListExcludesInactiveProducts(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	seed(t, db, seedParams{name: "Visible", price: 10, active: true})
	seed(t, db, seedParams{name: "Hidden", price: 10, active: false})

	products, err := repo.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Visible", products[0].Name)
}

func TestListFiltersByPriceRange(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	seed(t, db, seedParams{name: "Cheap", price: 5, active: true})
	seed(t, db, seedParams{name: "Mid", price: 25, active: true})
	seed(t, db, seedParams{name: "Pricey", price: 90, active: true})

	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(50)
	products, err := repo.List(context.Background(), ListFilter{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mid", products[0].Name)
}

func TestListSearchMatchesNameAndDescription(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	seed(t, db, seedParams{name: "Ceramic Mug", price: 12, active: true})
	seed(t, db, seedParams{name: "Plate", price: 8, active: true, desc: "A ceramic dinner plate"})
	seed(t, db, seedParams{name: "Spoon", price: 3, active: true})

	products, err := repo.List(context.Background(), ListFilter{Search: "CERAMIC"})
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestListFeaturedAndCategory(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	category := models.Category{ID: uuid.New(), Name: "Kitchen", Slug: "kitchen", IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	seed(t, db, seedParams{name: "Star", price: 10, active: true, featured: true, categoryID: &category.ID})
	seed(t, db, seedParams{name: "Plain", price: 10, active: true, categoryID: &category.ID})
	seed(t, db, seedParams{name: "Elsewhere", price: 10, active: true, featured: true})

	products, err := repo.List(context.Background(), ListFilter{FeaturedOnly: true, CategoryID: &category.ID})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Star", products[0].Name)
}

func TestListSortsByPrice(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	seed(t, db, seedParams{name: "B", price: 20, active: true})
	seed(t, db, seedParams{name: "A", price: 10, active: true})
	seed(t, db, seedParams{name: "C", price: 30, active: true})

	products, err := repo.List(context.Background(), ListFilter{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "A", products[0].Name)
	assert.Equal(t, "C", products[2].Name)
}

func TestFindByIDSkipsInactive(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	inactive := seed(t, db, seedParams{name: "Gone", price: 10, active: false})
	_, err := repo.FindByID(context.Background(), inactive.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindByIDsReturnsActiveKeyedByID(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	active := seed(t, db, seedParams{name: "Active", price: 10, active: true})
	inactive := seed(t, db, seedParams{name: "Inactive", price: 10, active: false})

	byID, err := repo.FindByIDs(context.Background(), []uuid.UUID{active.ID, inactive.ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Active", byID[active.ID].Name)
}

func TestDecrementStock(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	product := seed(t, db, seedParams{name: "Mug", price: 12, active: true, stock: 5})

	require.NoError(t, repo.DecrementStock(context.Background(), product.ID, 3))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 2, reloaded.StockQuantity)
}

func TestDecrementStockRejectsOverdraw(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	product := seed(t, db, seedParams{name: "Mug", price: 12, active: true, stock: 2})

	err := repo.DecrementStock(context.Background(), product.ID, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The row is untouched on a rejected decrement.
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 2, reloaded.StockQuantity)
}
