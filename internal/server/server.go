// Package server boots the application: configuration, database, logging
// sinks, dependency wiring, and the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/kirana/app/controllers"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/app/routes"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/config"
	"github.com/shashiranjanraj/kirana/pkg/database"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/payment"
	"github.com/shashiranjanraj/kirana/pkg/router"
)

const shutdownGrace = 10 * time.Second

// Run boots everything and blocks until SIGINT/SIGTERM, then drains
// in-flight requests before returning.
func Run() error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		database.Disconnect(dctx)
	}()

	if config.MongoLogging() {
		col := database.DB.Collection(config.MongoLogCollection())
		sink := logger.NewMongoSink(logger.L.Handler(), col)
		logger.UseHandler(sink)
		defer sink.Close()
	}

	var rdb *redis.Client
	if addr := config.RedisAddr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.RedisPassword(),
		})
		defer rdb.Close()
	}

	users := repositories.NewUserRepository(database.DB)
	categories := repositories.NewCategoryRepository(database.DB)
	products := repositories.NewProductRepository(database.DB)
	orders := repositories.NewOrderRepository(database.DB)

	authSvc := services.NewAuthService(users)
	checkoutSvc := services.NewCheckoutService(products, orders, payment.NewBraintree())

	r := router.New()
	routes.Register(r, routes.Deps{
		Auth:     controllers.NewAuthController(authSvc, orders),
		Category: controllers.NewCategoryController(categories),
		Product:  controllers.NewProductController(products, categories, checkoutSvc),
		Users:    users,
		Redis:    rdb,
	})

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	sctx, scancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
