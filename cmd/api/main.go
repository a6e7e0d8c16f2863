package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopmall/internal/config"
	"shopmall/internal/db"
	"shopmall/internal/httpserver"
	"shopmall/internal/payment"
	addressrepo "shopmall/internal/repository/address"
	cartrepo "shopmall/internal/repository/cart"
	inventoryrepo "shopmall/internal/repository/inventory"
	orderrepo "shopmall/internal/repository/order"
	productrepo "shopmall/internal/repository/product"
	storerepo "shopmall/internal/repository/store"
	ordersvc "shopmall/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	orders := orderrepo.NewPostgres(dbpool, logger)
	products := productrepo.NewPostgres(dbpool, logger)
	ledger := inventoryrepo.NewPostgres(dbpool, logger)
	addresses := addressrepo.NewPostgres(dbpool)
	carts := cartrepo.NewPostgres(dbpool, logger)
	stores := storerepo.NewPostgres(dbpool)
	gateway := payment.NewSimulated(logger)

	orderService := ordersvc.New(orders, products, ledger, addresses, carts, stores, gateway, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		OrderSvc: orderService,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
