package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blackvant/internal/config"
	"blackvant/internal/db"
	"blackvant/internal/handlers"
	"blackvant/internal/logger"
	"blackvant/internal/projector"
	"blackvant/internal/services"
	"blackvant/internal/store"
	"blackvant/internal/websocket"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer database.Close()

	users := store.NewUserStore(database)
	ledger := store.NewLedgerStore(database)
	deposits := store.NewDepositStore(database)
	withdrawals := store.NewWithdrawalStore(database)
	settingsStore := store.NewSettingsStore(database)
	attachments := store.NewAttachmentStore(database)
	tickets := store.NewTicketStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	balances := projector.New(ledger)
	settings := services.NewSettingsResolver(settingsStore, cfg.SettingsCacheTTL)
	attachmentService := services.NewAttachmentService(attachments, cfg.UploadBaseURL, cfg.UploadSigningSecret)
	lockRule := services.DepositAgeLockRule{Ledger: ledger}
	requestService := services.NewRequestService(txRunner, ledger, deposits, withdrawals, settings, balances, audit, attachmentService, lockRule, hub, log)
	accrualService := services.NewAccrualService(txRunner, ledger, balances, audit, hub, log)

	handler := handlers.New(txRunner, cfg, users, ledger, deposits, withdrawals, tickets, audit, requestService, accrualService, attachmentService, settings, balances, lockRule, hub, log)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("shutdown error")
	}
}
