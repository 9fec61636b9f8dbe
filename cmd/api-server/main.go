package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"pokehub/internal/events"
	"pokehub/internal/pokeapi"
	"pokehub/pkg/config"
	"pokehub/pkg/database"
	"pokehub/pkg/logging"
)

func main() {
	configFile := flag.String("config", "", "config file (default ./pokehub.yaml)")
	flag.Parse()

	cfg, err := config.Load(viper.New(), *configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.OpenAndMigrate(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	hub := events.NewHub(log)
	client := pokeapi.NewClient(pokeapi.Options{
		BaseURL:  cfg.PokeAPI.BaseURL,
		Timeout:  cfg.PokeAPI.Timeout,
		RetryMax: cfg.PokeAPI.RetryMax,
		Logger:   log,
	})

	router := newRouter(cfg, deps{DB: db, Hub: hub, Client: client, Log: log})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutdown signal received")
	case err := <-errCh:
		log.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	hub.Close()
	log.Info("server stopped")
}
