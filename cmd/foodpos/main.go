package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/api"
	"bitbucket.org/mmdatafocus/foodpos/config"
	"bitbucket.org/mmdatafocus/foodpos/pos"
	"bitbucket.org/mmdatafocus/foodpos/sheetsync"
	"bitbucket.org/mmdatafocus/foodpos/store"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{"field": "settings"}).Fatal(err)
	}
	logger := config.InitLogger(settings)
	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	opened, err := store.Open(sigCtx, settings, logger)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "store", "driver": settings.StoreDriver}).Fatal(err)
	}
	defer opened.Close()

	guard := pos.NewLocalGuard()
	if opened.Locker != nil {
		guard = pos.NewRedisGuard(opened.Locker, "", 0, logger)
	}

	terminal, err := pos.NewTerminal(sigCtx, pos.Options{
		Store:      opened.Store,
		Logger:     logger,
		Guard:      guard,
		DefaultPin: settings.DefaultAdminPin,
	})
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "terminal"}).Fatal(err)
	}

	var prober sheetsync.Prober
	if p := sheetsync.NewDialProber(settings.SheetEndpoint, 5*time.Second); p != nil {
		prober = p
	}
	engine := sheetsync.NewEngine(sheetsync.Options{
		Endpoint:        settings.SheetEndpoint,
		Local:           terminal,
		Logger:          logger,
		HTTPClient:      &http.Client{Timeout: settings.SyncHTTPTimeout},
		Prober:          prober,
		SalesInterval:   settings.SalesPushInterval,
		CatalogInterval: settings.CatalogPullInterval,
		ProbeInterval:   settings.ProbeInterval,
	})
	terminal.SetSyncRequester(engine)
	if !engine.Configured() {
		logger.Warn("SHEET_ENDPOINT not configured; sales stay on this device")
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		engine.Run(workerCtx)
	}()

	srv := &http.Server{
		Addr: ":" + settings.Port,
		Handler: api.NewRouter(api.Options{
			Terminal:       terminal,
			Sync:           engine,
			Tokens:         utils.NewTokenIssuer(settings.APISecret, settings.TokenLifespan),
			Logger:         logger,
			AllowedOrigins: settings.CorsAllowedOrigins,
			Production:     settings.IsProduction(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()
	logger.WithFields(logrus.Fields{
		"port":   settings.Port,
		"driver": settings.StoreDriver,
	}).Info("foodpos started")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "server"}).Error(err)
		}
	}

	// stop the worker before draining so no push starts mid-shutdown
	cancelWorker()
	<-workerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "server"}).Error(err)
	}
}
