package handlers

import (
	"net/http"

	"blackvant/internal/config"
	"blackvant/internal/db"
	"blackvant/internal/middleware"
	"blackvant/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type Handler struct {
	txRunner    db.TxRunner
	cfg         config.Config
	users       UserStore
	ledger      LedgerStore
	deposits    DepositStore
	withdrawals WithdrawalStore
	tickets     TicketStore
	audit       AuditStore
	requests    RequestService
	accruals    AccrualService
	attachments AttachmentService
	settings    SettingsResolver
	projector   BalanceProjector
	lockRule    CapitalLockRule
	hub         *websocket.Hub
	log         zerolog.Logger
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, ledger LedgerStore, deposits DepositStore, withdrawals WithdrawalStore, tickets TicketStore, audit AuditStore, requests RequestService, accruals AccrualService, attachments AttachmentService, settings SettingsResolver, balanceProjector BalanceProjector, lockRule CapitalLockRule, hub *websocket.Hub, log zerolog.Logger) *Handler {
	return &Handler{
		txRunner:    txRunner,
		cfg:         cfg,
		users:       users,
		ledger:      ledger,
		deposits:    deposits,
		withdrawals: withdrawals,
		tickets:     tickets,
		audit:       audit,
		requests:    requests,
		accruals:    accruals,
		attachments: attachments,
		settings:    settings,
		projector:   balanceProjector,
		lockRule:    lockRule,
		hub:         hub,
		log:         log,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authn := middleware.Auth(h.cfg.JWTSecret, h.users, h.cfg.BootstrapAdminSubject)

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Get("/me", h.Me)
			r.Get("/me/dashboard/summary", h.DashboardSummary)
			r.Get("/me/dashboard/chart", h.DashboardChart)
			r.Get("/me/transactions", h.ListTransactions)
			r.Post("/me/deposits", h.CreateDeposit)
			r.Get("/me/deposits", h.ListDeposits)
			r.Post("/me/withdrawals", h.CreateWithdrawal)
			r.Get("/me/withdrawals", h.ListWithdrawals)
			r.Post("/uploads/request", h.RequestUpload)
			r.Post("/uploads/confirm", h.ConfirmUpload)
			r.Post("/support/ticket", h.CreateTicket)
			r.Get("/me/tickets", h.ListTickets)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authn)
			r.Use(middleware.RequireAdmin)
			r.Get("/settings/system", h.GetSystemSettings)
			r.Put("/settings/system", h.UpdateSystemSettings)
			r.Get("/deposits", h.AdminListDeposits)
			r.Get("/withdrawals", h.AdminListWithdrawals)
			r.Post("/deposits/{id}/decide", h.DecideDeposit)
			r.Post("/withdrawals/{id}/decide", h.DecideWithdrawal)
			r.Post("/adjustments", h.PostAdjustment)
			r.Get("/audit", h.ListAuditLogs)
		})

		r.With(middleware.InternalKey(h.cfg.AccrualKeyHash)).
			Post("/internal/accruals", h.PostAccruals)
	})

	router.Get("/ws/balances", h.WSBalances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
