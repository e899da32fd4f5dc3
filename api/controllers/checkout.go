package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	cartpkg "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const idempotencyKeyHeader = "Idempotency-Key"

type addressRequest struct {
	FullName   string  `json:"full_name" validate:"required"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required"`
	Phone      *string `json:"phone,omitempty"`
}

func (a addressRequest) toAddress() types.Address {
	return types.Address{
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

type placeOrderRequest struct {
	ShippingAddress addressRequest `json:"shipping_address" validate:"required"`
	BillingAddress  addressRequest `json:"billing_address" validate:"required"`
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	Notes           *string        `json:"notes,omitempty"`
}

// PlaceOrder validates the cart, persists the order, and clears the cart.
// Retries carrying the same Idempotency-Key header do not create a second
// order.
func PlaceOrder(manager *cartpkg.Manager, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), store, checkout.PlaceOrderInput{
			ShippingAddress: payload.ShippingAddress.toAddress(),
			BillingAddress:  payload.BillingAddress.toAddress(),
			PaymentMethod:   strings.TrimSpace(payload.PaymentMethod),
			Notes:           payload.Notes,
			IdempotencyKey:  strings.TrimSpace(r.Header.Get(idempotencyKeyHeader)),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
