package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Kingvinu7/Riddly-sub000/internal/archive"
	"github.com/Kingvinu7/Riddly-sub000/internal/config"
	"github.com/Kingvinu7/Riddly-sub000/internal/game"
	"github.com/Kingvinu7/Riddly-sub000/internal/handlers"
	"github.com/Kingvinu7/Riddly-sub000/internal/oracle"
	"github.com/Kingvinu7/Riddly-sub000/internal/riddles"
	"github.com/Kingvinu7/Riddly-sub000/internal/ws"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cfg := config.Load()

	var store archive.Store = archive.Noop{}
	if cfg.DBHost != "" {
		db, err := archive.Connect(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("archive connection failed")
		}
		store = db
	} else {
		log.Info().Msg("DB_HOST not set, game archive disabled")
	}

	var remote game.NarrativeOracle
	client := oracle.NewClient(cfg.OracleAPIKey, cfg.OracleAPIURL, cfg.OracleModel)
	if client.IsAvailable() {
		remote = client
	} else {
		log.Info().Msg("ORACLE_API_KEY not set, using fallback oracle only")
	}

	hub := ws.NewHub()
	opts := game.DefaultOptions()
	opts.MaxRounds = cfg.MaxRounds
	registry := game.NewRegistry(game.Deps{
		Bus:      hub,
		Oracle:   remote,
		Fallback: oracle.NewFallback(),
		Riddles:  riddles.NewBank(),
		Archive:  store,
	}, opts)

	roomHandler := handlers.NewRoomHandler(registry, store)
	wsHandler := handlers.NewWSHandler(hub, registry)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", roomHandler.Healthz)
	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		api.GET("/rooms/:code", roomHandler.GetRoom)
		api.GET("/games", roomHandler.ListGames)
	}

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
