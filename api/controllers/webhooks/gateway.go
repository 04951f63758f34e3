package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/brandbeam/brandbeam-backend/api/responses"
	walletsvc "github.com/brandbeam/brandbeam-backend/internal/wallet"
	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
)

type DepositConfirmer interface {
	ConfirmDeposit(ctx context.Context, proof walletsvc.DepositProof) (*models.DepositOrder, error)
}

// GatewayDeposit handles the payment gateway's signed proof-of-payment
// callback. The HMAC signature inside the payload is the authentication;
// the route carries no bearer token.
func GatewayDeposit(svc DepositConfirmer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		var proof walletsvc.DepositProof
		if err := json.Unmarshal(payload, &proof); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode deposit proof"))
			return
		}

		order, err := svc.ConfirmDeposit(ctx, proof)
		if err != nil {
			// A re-posted proof is acknowledged so the gateway stops retrying.
			if pkgErr := pkgerrors.As(err); pkgErr != nil && pkgErr.Code() == pkgerrors.CodeAlreadyProcessed {
				if logg != nil {
					logg.Info(logg.WithField(ctx, "order_reference", proof.OrderReference), "deposit proof replayed")
				}
				responses.WriteSuccess(w, map[string]string{"status": "already_processed"})
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "order_reference", order.OrderReference), "deposit confirmed")
		}
		responses.WriteSuccess(w, map[string]string{
			"status":          "confirmed",
			"order_reference": order.OrderReference,
		})
	}
}
