package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/api/responses"
	"github.com/brandbeam/brandbeam-backend/api/validators"
	payoutsvc "github.com/brandbeam/brandbeam-backend/internal/payouts"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
)

// PayoutRecord registers an off-platform transfer against a completed contract.
func PayoutRecord(svc payoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload payoutRecordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RecordPayout(r.Context(), actor, payoutsvc.RecordPayoutInput{
			ContractID:      payload.ContractID,
			AmountCents:     payload.AmountCents,
			Method:          enums.PayoutMethod(payload.Method),
			ReferenceNumber: payload.ReferenceNumber,
			Note:            payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// PayoutListForCreator returns the payouts recorded for a creator.
func PayoutListForCreator(svc payoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw := r.URL.Query().Get("creator_id")
		creatorID := actor.UserID
		if raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "creator_id must be a valid uuid"))
				return
			}
			creatorID = parsed
		}

		records, err := svc.ListForCreator(r.Context(), actor, creatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, records)
	}
}

type payoutRecordRequest struct {
	ContractID      uuid.UUID `json:"contract_id" validate:"required,uuid4"`
	AmountCents     int64     `json:"amount_cents" validate:"required,min=1"`
	Method          string    `json:"method" validate:"required"`
	ReferenceNumber string    `json:"reference_number" validate:"required"`
	Note            *string   `json:"note,omitempty"`
}
