package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/api/responses"
	"github.com/brandbeam/brandbeam-backend/api/validators"
	fundingsvc "github.com/brandbeam/brandbeam-backend/internal/funding"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
)

// ContractCreate registers a draft engagement between a brand and a creator.
func ContractCreate(svc fundingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload contractCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		brandID, err := resolveBrandID(actor, payload.BrandID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.CreateContract(r.Context(), actor, fundingsvc.CreateContractInput{
			BrandID:          brandID,
			CampaignID:       payload.CampaignID,
			CreatorID:        payload.CreatorID,
			TotalAmountCents: payload.TotalAmountCents,
			AdvancePercent:   payload.AdvancePercent,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, contract)
	}
}

// ContractLockAdvance moves the advance share of the contract total into escrow.
func ContractLockAdvance(svc fundingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return lockHandler(svc, logg, func(r *http.Request, contractID uuid.UUID) (*fundingsvc.FundingResult, error) {
		actor, err := actorFromRequest(r)
		if err != nil {
			return nil, err
		}
		return svc.LockAdvance(r.Context(), actor, contractID)
	})
}

// ContractLockFinal locks the remainder of the contract total and completes it.
func ContractLockFinal(svc fundingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return lockHandler(svc, logg, func(r *http.Request, contractID uuid.UUID) (*fundingsvc.FundingResult, error) {
		actor, err := actorFromRequest(r)
		if err != nil {
			return nil, err
		}
		return svc.LockFinal(r.Context(), actor, contractID)
	})
}

// ContractDetail returns a contract with its escrow history.
func ContractDetail(svc fundingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contractID, err := contractIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetContract(r.Context(), actor, contractID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// ContractList returns the brand's contracts, newest first.
func ContractList(svc fundingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
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

		contracts, err := svc.ListContracts(r.Context(), actor, brandID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, contracts)
	}
}

type contractCreateRequest struct {
	BrandID          *uuid.UUID `json:"brand_id,omitempty" validate:"omitempty,uuid4"`
	CampaignID       uuid.UUID  `json:"campaign_id" validate:"required,uuid4"`
	CreatorID        uuid.UUID  `json:"creator_id" validate:"required,uuid4"`
	TotalAmountCents int64      `json:"total_amount_cents" validate:"required,min=1"`
	AdvancePercent   int        `json:"advance_percent" validate:"min=0,max=100"`
}

func lockHandler(svc fundingsvc.Service, logg *logger.Logger, lock func(*http.Request, uuid.UUID) (*fundingsvc.FundingResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		contractID, err := contractIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := lock(r, contractID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func contractIDFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "contractID")
	contractID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id must be a valid uuid")
	}
	return contractID, nil
}
