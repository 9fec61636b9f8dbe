package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pokehub/internal/auth"
	"pokehub/internal/events"
	"pokehub/internal/fetcher"
	"pokehub/internal/pokeapi"
	"pokehub/internal/pokemon"
	"pokehub/internal/scoring"
	"pokehub/pkg/config"
	"pokehub/pkg/logging"
)

type deps struct {
	DB     *sql.DB
	Hub    *events.Hub
	Client *pokeapi.Client
	Log    logrus.FieldLogger
}

func newRouter(cfg config.Config, d deps) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinLogger(d.Log), gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := d.Hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
		})
	})

	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	authRepo := auth.NewRepo(d.DB)
	authHandler := auth.NewHandler(authRepo, tokenSvc, d.Log)
	authHandler.RegisterRoutes(router.Group("/auth"))

	protected := router.Group("")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/ws", events.WSHandler(d.Hub))

	repo := pokemon.NewRepo(d.DB, d.Hub, d.Log)
	orch := fetcher.NewOrchestrator(d.Client, cfg.Fetch.Concurrency, d.Log)
	pokemonHandler := pokemon.NewHandler(repo, d.Client, orch, scoring.NewEngine(), cfg.Fetch.DefaultLimit, d.Log)
	pokemonHandler.RegisterRoutes(protected)

	return router
}
