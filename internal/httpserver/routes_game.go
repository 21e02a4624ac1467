// internal/httpserver/routes_game.go
//
// Game endpoints. A game is created by POST /game/new and then driven
// through its ID; every endpoint answers with the game's display snapshot.
//   - POST /game/new                {"daily":bool}   → {gameId, view}
//   - GET  /game/{id}                                → view
//   - POST /game/{id}/reset         {"daily":bool}   → view
//   - POST /game/{id}/select/start  {"row","col"}    → view
//   - POST /game/{id}/select/move   {"row","col"}    → view
//   - POST /game/{id}/select/end                     → {word, view}
//   - POST /game/{id}/hint                           → {word, view}
//   - POST /game/{id}/solve                          → view
//   - GET  /game/{id}/events                         → text/event-stream

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/puzzle"
)

type newGameReq struct {
	Daily bool `json:"daily"`
}

type newGameRes struct {
	GameID string    `json:"gameId"`
	View   game.View `json:"view"`
}

type wordRes struct {
	Word string    `json:"word"`
	View game.View `json:"view"`
}

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)

	g := r.With(s.loadGame)
	g.Get("/game/{id}", s.handleView)
	g.Post("/game/{id}/reset", s.handleReset)
	g.Post("/game/{id}/select/start", s.handleSelection(func(g *game.Game, c puzzle.Cell) error { return g.SelectionStart(c) }))
	g.Post("/game/{id}/select/move", s.handleSelection(func(g *game.Game, c puzzle.Cell) error { return g.SelectionMove(c) }))
	g.Post("/game/{id}/select/end", s.handleSelectEnd)
	g.Post("/game/{id}/hint", s.handleHint)
	g.Post("/game/{id}/solve", s.handleSolve)
}

// newGame creates a game whose events go to the SSE stream and whose
// solves count for player.
func (s *Server) newGame(player string) *game.Game {
	g := game.New(s.deps.Picker, s.deps.GameOptions...)
	g.Subscribe(func(ev game.Event) {
		s.publish(ev)
		if ev.Kind == game.EventSolved {
			s.recordSolve(player, ev)
		}
	})
	return g
}

func (s *Server) publish(ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("encode event")
		return
	}
	s.sse.Broadcast(ev.GameID, string(ev.Kind), string(data))
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Daily {
		s.daily.handleNew(w, r)
		return
	}

	g := s.newGame(s.playerID(w, r))
	if _, err := g.NewGame(r.Context()); err != nil {
		s.sessionError(w, g, err)
		return
	}
	if err := s.deps.Store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.writeView(w, g, func(v game.View) any { return newGameRes{GameID: g.ID, View: v} })
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, gameFrom(r.Context()), nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g := gameFrom(r.Context())
	var err error
	if req.Daily {
		err = s.daily.seed(g)
	} else {
		_, err = g.NewGame(r.Context())
	}
	if err != nil {
		s.sessionError(w, g, err)
		return
	}
	s.writeView(w, g, nil)
}

func (s *Server) handleSelection(op func(*game.Game, puzzle.Cell) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c puzzle.Cell
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
		g := gameFrom(r.Context())
		v, err := g.View()
		if err != nil {
			s.sessionError(w, g, err)
			return
		}
		if c.Row < 0 || c.Col < 0 || c.Row >= v.Size || c.Col >= v.Size {
			writeError(w, http.StatusBadRequest, "out_of_bounds")
			return
		}
		if err := op(g, c); err != nil {
			s.sessionError(w, g, err)
			return
		}
		s.writeView(w, g, nil)
	}
}

func (s *Server) handleSelectEnd(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	word, err := g.SelectionEnd()
	if err != nil {
		s.sessionError(w, g, err)
		return
	}
	s.writeView(w, g, func(v game.View) any { return wordRes{Word: word, View: v} })
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	word, err := g.Hint()
	if err != nil {
		s.sessionError(w, g, err)
		return
	}
	s.writeView(w, g, func(v game.View) any { return wordRes{Word: word, View: v} })
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	if err := g.AutoSolve(); err != nil {
		s.sessionError(w, g, err)
		return
	}
	s.writeView(w, g, nil)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	s.sse.ServeSSE(w, r, g.ID, func(c *subscriber) {
		v, err := g.View()
		if err != nil {
			return
		}
		data, _ := json.Marshal(v)
		c.ch <- message{event: "snapshot", data: string(data)}
	})
}

// ------------------------------- helpers -----------------------------------

type ctxGameKey struct{}

// loadGame resolves {id} from the store and 404s on unknown games.
func (s *Server) loadGame(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxGameKey{}, g)))
	})
}

func gameFrom(ctx context.Context) *game.Game {
	g, _ := ctx.Value(ctxGameKey{}).(*game.Game)
	return g
}

// writeView answers with the game's snapshot, optionally wrapped.
func (s *Server) writeView(w http.ResponseWriter, g *game.Game, wrap func(game.View) any) {
	v, err := g.View()
	if err != nil {
		s.sessionError(w, g, err)
		return
	}
	if wrap == nil {
		writeJSON(w, http.StatusOK, v)
		return
	}
	writeJSON(w, http.StatusOK, wrap(v))
}

func (s *Server) sessionError(w http.ResponseWriter, g *game.Game, err error) {
	switch {
	case errors.Is(err, game.ErrSuperseded):
		writeError(w, http.StatusConflict, "superseded")
	case errors.Is(err, game.ErrNoSession):
		writeError(w, http.StatusConflict, "no_session")
	default:
		log.Error().Err(err).Str("gameId", g.ID).Msg("game operation")
		writeError(w, http.StatusInternalServerError, "game_error")
	}
}

// decodeOptional decodes a JSON body, treating an empty body as zero values.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
