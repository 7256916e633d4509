package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"integritywatch/internal/app"
	"integritywatch/internal/audit"
	"integritywatch/internal/auth"
	"integritywatch/internal/bill"
	"integritywatch/internal/committee"
	"integritywatch/internal/live"
	"integritywatch/internal/member"
	"integritywatch/internal/pipeline"
	"integritywatch/pkg/metrics"
)

func main() {
	cfg, log := app.Bootstrap("api")
	defer log.Sync()

	ctx := context.Background()
	db, err := app.OpenDB(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal("open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()

	m := metrics.New()
	hub := live.NewHub()

	orch, closeCache := app.NewOrchestrator(ctx, db, cfg, log)
	defer closeCache()
	orch.Metrics = m
	orch.Notifier = hub

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), m.Middleware())

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/ws", live.WSHandler(hub, log))
	router.GET("/metrics", m.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.DBPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Members, audit and bills (public)
	members := router.Group("/members")
	member.NewHandler(orch.Members, orch.Committees).RegisterRoutes(members)
	audit.NewHandler(orch.Members, orch.Auditor, orch.Ranker).RegisterRoutes(members)
	bill.NewHandler(orch.Bills).RegisterRoutes(router.Group("/bills"))
	committee.NewHandler(orch.Committees).RegisterRoutes(router.Group("/committees"))

	syncHandler := pipeline.NewHandler(orch)
	syncHandler.RegisterStatusRoutes(router.Group("/sync"))

	// Auth
	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTDuration)
	auth.NewHandler(cfg.Auth.AdminPasswordHash, tokenSvc).RegisterRoutes(router.Group("/auth"))
	if cfg.Auth.AdminPasswordHash == "" {
		log.Warn("auth.admin_password_hash not set, admin endpoints unreachable")
	}

	// Admin (protected)
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(tokenSvc))
	syncHandler.RegisterAdminRoutes(admin)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	var tcpSrv *live.Server
	if cfg.LiveAddr != "" {
		tcpSrv = live.NewServer(cfg.LiveAddr, hub, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("HTTP API server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	log.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			log.Error("tcp shutdown", zap.Error(err))
		}
	}

	wg.Wait()
	log.Info("servers stopped")
}
