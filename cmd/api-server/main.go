package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cardstore/internal/catalog"
	"cardstore/internal/inventory"
	"cardstore/internal/overrides"
	synchub "cardstore/internal/sync"
	"cardstore/pkg/database"
	"cardstore/pkg/utils"
)

func main() {
	cfg := utils.LoadStoreConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	ov := overrides.NewStore(database.NewKV(db))
	ov.Load(context.Background())

	var enum catalog.Enumerator
	var fetch catalog.Fetcher
	if cfg.DataURL != "" {
		enum = catalog.NewHTTPEnumerator(cfg.DataURL)
		fetch = catalog.NewHTTPFetcher()
	} else {
		enum = catalog.NewDirEnumerator(cfg.DataDir)
		fetch = catalog.FileFetcher{}
	}

	state := inventory.NewState(catalog.NewLoader(enum, fetch), ov, cfg.PageSize)

	// Initial load. A total failure is not fatal to the server; the
	// catalog stays empty until a reload succeeds.
	loadCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if res, err := state.Load(loadCtx); err != nil {
		log.Printf("initial catalog load failed: %v", err)
	} else {
		log.Printf("loaded %d cards from %d file(s)", len(res.Rows), len(res.Sources))
	}
	cancel()

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(cfg.FeedAddr, hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
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
			"cards":       state.TotalRows(),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db":          dbCfg.Path,
			"cards":       state.TotalRows(),
			"overrides":   ov.Len(),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	handler := inventory.NewHandler(state, hub, cfg.SellerEmail)
	handler.RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
