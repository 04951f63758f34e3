package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/api/responses"
	auditsvc "github.com/brandbeam/brandbeam-backend/internal/audit"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
)

// AuditListForSubject returns the audit trail for one subject, newest first.
func AuditListForSubject(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		subjectID, err := uuid.Parse(chi.URLParam(r, "subjectID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "subject id must be a valid uuid"))
			return
		}

		entries, err := svc.ListForSubject(r.Context(), subjectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entries)
	}
}
