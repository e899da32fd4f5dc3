package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	dbmodels "github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// AddInput carries the fields for a new review.
type AddInput struct {
	ProductID uuid.UUID
	OrderID   *uuid.UUID
	Rating    int
	Title     string
	Comment   *string
}

// UpdateInput carries the editable fields of an existing review.
type UpdateInput struct {
	Rating  int
	Title   string
	Comment *string
}

// ServiceParams groups dependencies for the review service.
type ServiceParams struct {
	Repo        *Repository
	ProductRepo *products.Repository
}

// Service exposes review management for shoppers.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, input AddInput) (*dbmodels.Review, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, input UpdateInput) (*dbmodels.Review, error)
	Delete(ctx context.Context, userID, reviewID uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]dbmodels.Review, error)
	StatsByProduct(ctx context.Context, productID uuid.UUID) (Stats, error)
}

type service struct {
	repo        *Repository
	productRepo *products.Repository
}

// NewService builds the review service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: params.Repo, productRepo: params.ProductRepo}, nil
}

// Add creates a review for a product the user has not reviewed yet.
func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddInput) (*dbmodels.Review, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := validateFields(input.Rating, input.Title); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}

	review := &dbmodels.Review{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: input.ProductID,
		OrderID:   input.OrderID,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Comment:   input.Comment,
	}
	if err := s.repo.Insert(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating review")
	}
	return review, nil
}

// Update edits the caller's own review.
func (s *service) Update(ctx context.Context, userID, reviewID uuid.UUID, input UpdateInput) (*dbmodels.Review, error) {
	if err := validateFields(input.Rating, input.Title); err != nil {
		return nil, err
	}

	review, err := s.ownedReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.Title = strings.TrimSpace(input.Title)
	review.Comment = input.Comment
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating review")
	}
	return review, nil
}

// Delete removes the caller's own review.
func (s *service) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	review, err := s.ownedReview(ctx, userID, reviewID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, review.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting review")
	}
	return nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]dbmodels.Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing reviews")
	}
	return reviews, nil
}

func (s *service) StatsByProduct(ctx context.Context, productID uuid.UUID) (Stats, error) {
	stats, err := s.repo.StatsByProduct(ctx, productID)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregating reviews")
	}
	return stats, nil
}

func (s *service) ownedReview(ctx context.Context, userID, reviewID uuid.UUID) (*dbmodels.Review, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading review")
	}
	if review.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "review belongs to another user")
	}
	return review, nil
}

func validateFields(rating int, title string) error {
	if rating < 1 || rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	return nil
}
