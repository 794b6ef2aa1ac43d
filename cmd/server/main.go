package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	orderingapp "github.com/b2bportal/backend/internal/application/ordering"
	pricingapp "github.com/b2bportal/backend/internal/application/pricing"
	"github.com/b2bportal/backend/internal/application/reconcile"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/b2bportal/backend/internal/infrastructure/cache"
	"github.com/b2bportal/backend/internal/infrastructure/config"
	"github.com/b2bportal/backend/internal/infrastructure/logger"
	"github.com/b2bportal/backend/internal/infrastructure/persistence"
	"github.com/b2bportal/backend/internal/interfaces/http/handler"
	"github.com/b2bportal/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting portal backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	catalogStore := persistence.NewGormCatalogStore(db.DB)
	masterRepo := persistence.NewGormMasterDataRepository(db.DB)
	synonymRepo := persistence.NewGormBrandSynonymRepository(db.DB)
	ruleRepo := persistence.NewGormSupplierPricingRuleRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	clientRulesRepo := persistence.NewGormClientPricingRulesRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Run guard: Redis when configured, in-process otherwise.
	var guard shared.RunGuard
	if cfg.Redis.Host != "" {
		redisGuard, err := cache.NewRedisRunGuard(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		guard = redisGuard
		log.Info("Redis run guard enabled")
	} else {
		guard = cache.NewInMemoryRunGuard()
		log.Info("In-memory run guard enabled")
	}
	defer func() {
		if err := guard.Close(); err != nil {
			log.Error("Error closing run guard", zap.Error(err))
		}
	}()

	masterDataCache := cache.NewMasterDataCache(masterRepo, synonymRepo, shared.SystemClock{}, cfg.Cache.MasterDataTTL, log)

	// Application services
	reconcileService := reconcile.NewService(catalogStore, masterDataCache, ruleRepo, supplierRepo, log, reconcile.Config{
		RowCap:      cfg.Reconcile.RowCap,
		ChunkSize:   cfg.Reconcile.ChunkSize,
		WorkerLimit: cfg.Reconcile.WorkerLimit,
	})
	resolver := pricingapp.NewResolver(clientRulesRepo, ruleRepo, supplierRepo, log)
	orderService := orderingapp.NewService(orderRepo, clientRepo, catalogStore, resolver, ruleRepo, supplierRepo, guard, log)

	engine := router.New(cfg, log, router.Handlers{
		Catalog: handler.NewCatalogHandler(reconcileService, guard, cfg.Reconcile.RunGuardTTL),
		Pricing: handler.NewPricingHandler(resolver, catalogStore, clientRepo),
		Orders:  handler.NewOrderHandler(orderService, orderRepo),
		System:  handler.NewSystemHandler(db, masterDataCache),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
