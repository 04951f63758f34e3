package controllers

import (
	"net/http"

	"github.com/brandbeam/brandbeam-backend/api/middleware"
	"github.com/brandbeam/brandbeam-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if brand := middleware.BrandIDFromContext(r.Context()); brand != "" {
			payload["brand_id"] = brand
		}
		responses.WriteSuccess(w, payload)
	}
}
