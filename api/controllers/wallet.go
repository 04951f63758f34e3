package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/api/middleware"
	"github.com/brandbeam/brandbeam-backend/api/responses"
	"github.com/brandbeam/brandbeam-backend/api/validators"
	walletsvc "github.com/brandbeam/brandbeam-backend/internal/wallet"
	"github.com/brandbeam/brandbeam-backend/pkg/auth"
	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
	"github.com/brandbeam/brandbeam-backend/pkg/pagination"
)

// WalletCreateDepositOrder opens a pending recharge order and hands back
// the gateway checkout URL.
func WalletCreateDepositOrder(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload depositOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		brandID, err := resolveBrandID(actor, payload.BrandID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateDepositOrder(r.Context(), actor, walletsvc.CreateDepositOrderInput{
			BrandID:     brandID,
			AmountCents: payload.AmountCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newDepositOrderResponse(order))
	}
}

// WalletSummary returns the wallet balance plus a cursor page of its ledger.
func WalletSummary(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		brandID, err := brandIDFromQuery(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GetSummary(r.Context(), actor, brandID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

type depositOrderRequest struct {
	BrandID     *uuid.UUID `json:"brand_id,omitempty" validate:"omitempty,uuid4"`
	AmountCents int64      `json:"amount_cents" validate:"required,min=1"`
}

type depositOrderResponse struct {
	OrderID        uuid.UUID `json:"order_id"`
	OrderReference string    `json:"order_reference"`
	BrandID        uuid.UUID `json:"brand_id"`
	AmountCents    int64     `json:"amount_cents"`
	Status         string    `json:"status"`
	CheckoutURL    string    `json:"checkout_url"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func newDepositOrderResponse(order *models.DepositOrder) depositOrderResponse {
	if order == nil {
		return depositOrderResponse{}
	}
	return depositOrderResponse{
		OrderID:        order.ID,
		OrderReference: order.OrderReference,
		BrandID:        order.BrandID,
		AmountCents:    order.AmountCents,
		Status:         string(order.Status),
		CheckoutURL:    order.CheckoutURL,
		ExpiresAt:      order.ExpiresAt,
	}
}

func actorFromRequest(r *http.Request) (auth.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}

// resolveBrandID prefers the explicit body value, falling back to the
// actor's own brand.
func resolveBrandID(actor auth.Actor, explicit *uuid.UUID) (uuid.UUID, error) {
	if explicit != nil && *explicit != uuid.Nil {
		return *explicit, nil
	}
	if actor.BrandID != nil && *actor.BrandID != uuid.Nil {
		return *actor.BrandID, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "brand_id is required")
}

func brandIDFromQuery(r *http.Request, actor auth.Actor) (uuid.UUID, error) {
	raw := r.URL.Query().Get("brand_id")
	if raw == "" {
		return resolveBrandID(actor, nil)
	}
	brandID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "brand_id must be a valid uuid")
	}
	return brandID, nil
}

func paginationFromQuery(r *http.Request) (pagination.Params, error) {
	page := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer")
		}
		page.Limit = limit
	}
	return page, nil
}
