package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stockpass/internal/config"
	httpapi "stockpass/internal/http"
	"stockpass/internal/repository"
	"stockpass/internal/service"

	_ "stockpass/docs"
)

func main() {
	lg := logger.Init("stockpass", true, false, io.Discard)
	defer lg.Close()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatalf("connect database: %v", err)
	}

	store := repository.NewGormStore(db)
	if err := store.AutoMigrate(); err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	ticketsRepo := repository.NewGormTickets(db)
	statusRepo := repository.NewGormStatus(db)
	tx := repository.NewGormTx(db)

	productsSvc := service.NewProductService(store, tx)
	ticketsSvc := service.NewTicketService(store, ticketsRepo, tx)
	statusSvc := service.NewStatusService(statusRepo)

	srv := httpapi.NewServer(productsSvc, ticketsSvc, statusSvc)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Infof("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
