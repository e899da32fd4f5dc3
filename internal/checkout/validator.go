package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// StockReader re-reads current product state at checkout time.
type StockReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Validator is the final gate before an order payload is assembled. Stock is
// re-read rather than trusted from the cart because it may have moved since
// the items were added. Nothing reserves stock between this check and order
// creation, so a concurrent shopper can still win the last unit; that window
// is accepted here, not closed.
type Validator struct {
	products StockReader
}

// NewValidator builds a checkout validator.
func NewValidator(products StockReader) (*Validator, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock reader is required")
	}
	return &Validator{products: products}, nil
}

// Validate rejects empty carts and carts where any line exceeds the product's
// current stock. The first offending product is named in the error.
func (v *Validator) Validate(ctx context.Context, items []models.CartItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	current, err := v.products.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading product stock")
	}

	for _, item := range items {
		product, ok := current[item.ProductID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("product %s is no longer available", itemName(item))).
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if item.Quantity > product.StockQuantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", product.Name)).
				WithDetails(map[string]any{
					"product_id": product.ID,
					"product":    product.Name,
					"stock":      product.StockQuantity,
					"requested":  item.Quantity,
				})
		}
	}
	return nil
}

func itemName(item models.CartItem) string {
	if item.Product != nil {
		return item.Product.Name
	}
	return item.ProductID.String()
}
