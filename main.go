// Command wordsearch serves the word-search game over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/assets"
	"github.com/robalobadob/wordsearch/internal/auth"
	"github.com/robalobadob/wordsearch/internal/config"
	"github.com/robalobadob/wordsearch/internal/database"
	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/httpserver"
	"github.com/robalobadob/wordsearch/internal/scores"
	"github.com/robalobadob/wordsearch/internal/store"
)

func main() {
	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	srv := httpserver.New(httpserver.Deps{
		Store: store.NewMemoryStore(),
		Auth: auth.NewService(db, auth.Options{
			Secret:     cfg.JWTSecret,
			TTL:        cfg.JWTExpiresIn,
			CookieName: cfg.CookieName,
			AnonCookie: cfg.AnonCookie,
			Secure:     cfg.Secure,
		}),
		Scores:         scores.NewStore(db),
		Picker:         cfg.WordPicker(ctx),
		GameOptions:    []game.Option{game.WithSize(cfg.GridSize)},
		DailySalt:      cfg.DailySalt,
		ClientOrigin:   cfg.ClientURL,
		RequestTimeout: cfg.RequestTimeout,
		GameTTL:        cfg.GameTTL,
	})

	log.Info().Str("port", cfg.Port).Int("grid", cfg.GridSize).Msg("starting wordsearch server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
