package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

func setupReviewsTest(t *testing.T) (*gorm.DB, Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserProfile{}, &models.Product{}, &models.Review{}))

	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(db),
		ProductRepo: products.NewRepository(db),
	})
	require.NoError(t, err)
	return db, svc
}

func seedReviewProduct(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{
		ID:            uuid.New(),
		Name:          "Mug",
		SKU:           uuid.NewString(),
		Price:         decimal.NewFromInt(12),
		StockQuantity: 5,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestAddReview(t *testing.T) {
	db, svc := setupReviewsTest(t)
	product := seedReviewProduct(t, db)
	userID := uuid.New()

	review, err := svc.Add(context.Background(), userID, AddInput{
		ProductID: product.ID,
		Rating:    4,
		Title:     "Solid mug",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, userID, review.UserID)
}

func TestAddReviewRejectsDuplicate(t *testing.T) {
	db, svc := setupReviewsTest(t)
	product := seedReviewProduct(t, db)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, AddInput{ProductID: product.ID, Rating: 4, Title: "First"})
	require.NoError(t, err)

	_, err = svc.Add(ctx, userID, AddInput{ProductID: product.ID, Rating: 2, Title: "Second"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestAddReviewValidation(t *testing.T) {
	db, svc := setupReviewsTest(t)
	product := seedReviewProduct(t, db)
	ctx := context.Background()

	_, err := svc.Add(ctx, uuid.New(), AddInput{ProductID: product.ID, Rating: 0, Title: "Bad"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Add(ctx, uuid.New(), AddInput{ProductID: product.ID, Rating: 6, Title: "Bad"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Add(ctx, uuid.New(), AddInput{ProductID: product.ID, Rating: 3, Title: "  "})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Add(ctx, uuid.New(), AddInput{ProductID: uuid.New(), Rating: 3, Title: "Ghost"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateReviewScopedToAuthor(t *testing.T) {
	db, svc := setupReviewsTest(t)
	product := seedReviewProduct(t, db)
	author := uuid.New()
	ctx := context.Background()

	review, err := svc.Add(ctx, author, AddInput{ProductID: product.ID, Rating: 3, Title: "Okay"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, author, review.ID, UpdateInput{Rating: 5, Title: "Great after all"})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	_, err = svc.Update(ctx, uuid.New(), review.ID, UpdateInput{Rating: 1, Title: "Hijack"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}

func TestDeleteReview(t *testing.T) {
	db, svc := setupReviewsTest(t)
	product := seedReviewProduct(t, db)
	author := uuid.New()
	ctx := context.Background()

	review, err := svc.Add(ctx, author, AddInput{ProductID: product.ID, Rating: 3, Title: "Okay"})
	require.NoError(t, err)

	require.True(t, pkgerrors.HasCode(svc.Delete(ctx, uuid.New(), review.ID), pkgerrors.CodeForbidden))
	require.NoError(t, svc.Delete(ctx, author, review.ID))
	require.True(t, pkgerrors.HasCode(svc.Delete(ctx, author, review.ID), pkgerrors.CodeNotFound))
}

func TestListAndStatsByProduct(t *testing.T) {
	db, svc := setupReviewsTest(t)
	product := seedReviewProduct(t, db)
	ctx := context.Background()

	ratings := []int{5, 3, 4}
	for _, rating := range ratings {
		_, err := svc.Add(ctx, uuid.New(), AddInput{ProductID: product.ID, Rating: rating, Title: "Review"})
		require.NoError(t, err)
	}

	reviews, err := svc.ListByProduct(ctx, product.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)

	stats, err := svc.StatsByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Count)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
}

func TestStatsForUnreviewedProduct(t *testing.T) {
	_, svc := setupReviewsTest(t)

	stats, err := svc.StatsByProduct(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.AverageRating)
}
