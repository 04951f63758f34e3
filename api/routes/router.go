package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandbeam/brandbeam-backend/api/controllers"
	webhookcontrollers "github.com/brandbeam/brandbeam-backend/api/controllers/webhooks"
	"github.com/brandbeam/brandbeam-backend/api/middleware"
	auditsvc "github.com/brandbeam/brandbeam-backend/internal/audit"
	fundingsvc "github.com/brandbeam/brandbeam-backend/internal/funding"
	payoutsvc "github.com/brandbeam/brandbeam-backend/internal/payouts"
	walletsvc "github.com/brandbeam/brandbeam-backend/internal/wallet"
	"github.com/brandbeam/brandbeam-backend/pkg/config"
	"github.com/brandbeam/brandbeam-backend/pkg/db"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
	"github.com/brandbeam/brandbeam-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	walletService walletsvc.Service,
	fundingService fundingsvc.Service,
	payoutService payoutsvc.Service,
	auditService auditsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// The gateway callback authenticates with the payload signature, not a
	// bearer token, so it stays outside the auth group.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/gateway/deposit", webhookcontrollers.GatewayDeposit(walletService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletSummary(walletService, logg))
			r.Post("/deposit-orders", controllers.WalletCreateDepositOrder(walletService, logg))
		})

		r.Route("/v1/contracts", func(r chi.Router) {
			r.Get("/", controllers.ContractList(fundingService, logg))
			r.Post("/", controllers.ContractCreate(fundingService, logg))
			r.Get("/{contractID}", controllers.ContractDetail(fundingService, logg))
			r.Post("/{contractID}/lock-advance", controllers.ContractLockAdvance(fundingService, logg))
			r.With(middleware.RequireOperator(logg)).Post("/{contractID}/lock-final", controllers.ContractLockFinal(fundingService, logg))
		})

		r.Route("/v1/payouts", func(r chi.Router) {
			r.Get("/", controllers.PayoutListForCreator(payoutService, logg))
			r.With(middleware.RequireOperator(logg)).Post("/", controllers.PayoutRecord(payoutService, logg))
		})

		r.Route("/v1/audit", func(r chi.Router) {
			r.Use(middleware.RequireOperator(logg))
			r.Get("/{subjectID}", controllers.AuditListForSubject(auditService, logg))
		})
	})

	return r
}
