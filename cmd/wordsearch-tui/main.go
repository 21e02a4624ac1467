// Command wordsearch-tui plays the word-search game in a terminal.
//
// The screen belongs to tcell, so logs go to WORDSEARCH_LOG (a file path)
// or are discarded.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/config"
	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/sound"
	"github.com/robalobadob/wordsearch/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wordsearch-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.LogLevel)

	var out io.Writer = io.Discard
	if path := os.Getenv("WORDSEARCH_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	player := sound.OpenSpeaker()
	if os.Getenv("WORDSEARCH_MUTE") != "" {
		player.Toggle()
	}

	g := game.New(cfg.WordPicker(ctx), game.WithSize(cfg.GridSize))
	app := tui.New(screen, g, player, cfg.DailySalt)
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
