// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily puzzle:
//   - GET  /daily     → today's date key and time until the next puzzle
//   - POST /daily/new → start (or resume) today's puzzle
//
// Everybody gets the same grid on a UTC date: the seed is an HMAC of the
// date and DAILY_SALT, and the words come from the fixed fallback list.
// A player's daily game is remembered so a second request resumes it.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/robalobadob/wordsearch/internal/daily"
	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/words"
)

type dailyServer struct {
	srv   *Server
	salt  string
	mu    sync.Mutex
	games map[string]string // player|date → game ID
}

func newDailyServer(s *Server) *dailyServer {
	salt := s.deps.DailySalt
	if salt == "" {
		salt = "local_dev_salt"
	}
	return &dailyServer{srv: s, salt: salt, games: make(map[string]string)}
}

func (d *dailyServer) mount(r chi.Router) {
	r.Get("/daily", d.handleToday)
	r.Post("/daily/new", d.handleNew)
}

func (d *dailyServer) handleToday(w http.ResponseWriter, r *http.Request) {
	now := d.srv.deps.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     daily.DateKey(now),
		"nextInMs": next.Sub(now).Milliseconds(),
	})
}

// forget drops the resume entries of evicted games.
func (d *dailyServer) forget(ids []string) {
	if len(ids) == 0 {
		return
	}
	gone := mapset.Of(ids...)
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, id := range d.games {
		if gone.Has(id) {
			delete(d.games, key)
		}
	}
}

// seed replaces g's session with today's puzzle.
func (d *dailyServer) seed(g *game.Game) error {
	now := d.srv.deps.Now()
	_, err := g.NewSeededGame(daily.Seed(now, d.salt), words.Fallback(), daily.DateKey(now))
	return err
}

func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	player := d.srv.playerID(w, r)
	key := player + "|" + daily.DateKey(d.srv.deps.Now())

	if player != "" {
		d.mu.Lock()
		id, ok := d.games[key]
		d.mu.Unlock()
		if ok {
			if g, err := d.srv.deps.Store.Get(r.Context(), id); err == nil {
				if v, err := g.View(); err == nil && v.Daily != "" {
					writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, View: v})
					return
				}
			}
		}
	}

	g := d.srv.newGame(player)
	if err := d.seed(g); err != nil {
		d.srv.sessionError(w, g, err)
		return
	}
	if err := d.srv.deps.Store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save daily game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if player != "" {
		d.mu.Lock()
		d.games[key] = g.ID
		d.mu.Unlock()
	}
	d.srv.writeView(w, g, func(v game.View) any { return newGameRes{GameID: g.ID, View: v} })
}
