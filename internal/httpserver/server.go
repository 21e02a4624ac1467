// internal/httpserver/server.go
//
// HTTP server wiring for the word-search backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (optional auth): /game/*, plus the SSE event stream.
//   - Daily puzzle endpoints (optional auth): mounted under /daily.
//   - Account endpoints: /auth/*, and the caller's best score at /scores/me.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The SSE stream sits outside the request timeout.
//   - Scores are recorded for the player who created a game: the account
//     when signed in, the anonymous cookie id otherwise.
//   - Games idle for longer than GameTTL are evicted by a periodic sweep.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/auth"
	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/scores"
	"github.com/robalobadob/wordsearch/internal/store"
	"github.com/robalobadob/wordsearch/internal/words"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Store  store.Store
	Auth   *auth.Service
	Scores *scores.Store
	Picker game.WordPicker
	// GameOptions are applied to every game (grid size, clock).
	GameOptions []game.Option

	DailySalt      string
	ClientOrigin   string
	RequestTimeout time.Duration
	GameTTL        time.Duration
	Now            func() time.Time
}

const sweepEvery = time.Minute

// Server bundles the router and its dependencies.
type Server struct {
	r      *chi.Mux
	deps   Deps
	sse    *Broadcaster
	daily  *dailyServer
	origin string
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Store == nil {
		d.Store = store.NewMemoryStore(store.WithNow(d.Now))
	}
	if d.Picker == nil {
		d.Picker = words.NewPicker()
	}
	if d.GameTTL <= 0 {
		d.GameTTL = 2 * time.Hour
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}
	s := &Server{r: chi.NewRouter(), deps: d, sse: NewBroadcaster(), origin: d.ClientOrigin}
	if s.origin == "" {
		s.origin = "http://localhost:5173"
	}
	s.daily = newDailyServer(s)

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(d.RequestTimeout))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"wordsearch-go","endpoints":["/health","POST /game/new","/game/{id}/*","/daily","/auth/*","/scores/me"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]int{"fallback": words.Stats(), "games": s.deps.Store.Len()})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.optionalAuth)
			s.mountGame(r)
			s.daily.mount(r)
			r.Get("/scores/me", s.handleMyScore)
		})

		s.mountAuthRoutes(r)
	})

	// Long-lived stream: no request timeout.
	s.r.With(s.loadGame).Get("/game/{id}/events", s.handleEvents)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Start serves HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	go s.sweepLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdown)
	}()
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) sweepLoop(ctx context.Context) {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep evicts games not touched for GameTTL and returns how many went.
func (s *Server) Sweep(ctx context.Context) int {
	ids, err := s.deps.Store.Idle(ctx, s.deps.Now().Add(-s.deps.GameTTL))
	if err != nil {
		log.Warn().Err(err).Msg("list idle games")
		return 0
	}
	for _, id := range ids {
		if err := s.deps.Store.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("evict game")
		}
	}
	s.daily.forget(ids)
	if len(ids) > 0 {
		log.Info().Int("evicted", len(ids)).Int("live", s.deps.Store.Len()).Msg("swept idle games")
	}
	return len(ids)
}

// ServeHTTP lets the Server act as an http.Handler (tests use it directly).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Router exposes the internal router.
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionalAuth(next http.Handler) http.Handler {
	if s.deps.Auth == nil {
		return next
	}
	return s.deps.Auth.Optional()(next)
}

// playerID identifies the caller for score keeping: the account id when
// signed in, otherwise the anonymous cookie id ("" without accounts).
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return id.ID
	}
	if s.deps.Auth == nil {
		return ""
	}
	return s.deps.Auth.AnonID(w, r)
}

// ------------------------------- AUTH --------------------------------------

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers /auth/*. Without an auth service they answer 503.
func (s *Server) mountAuthRoutes(r chi.Router) {
	if s.deps.Auth == nil {
		r.HandleFunc("/auth/*", func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusServiceUnavailable, "accounts_disabled")
		})
		return
	}
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)
	r.With(s.deps.Auth.Require()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		me, _ := auth.FromContext(r.Context())
		writeJSON(w, http.StatusOK, me)
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.deps.Auth.Signup(r.Context(), body.Username, body.Password)
	if errors.Is(err, auth.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "Username taken")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.deps.Auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": u.ID, "username": u.Username})
}

// signIn sets the auth cookie and claims the guest's best score.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	tok, exp, err := s.deps.Auth.Sign(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.deps.Auth.SetCookie(w, tok, exp)
	if s.deps.Scores != nil {
		if err := s.deps.Scores.Claim(r.Context(), s.deps.Auth.AnonID(w, r), u.ID); err != nil {
			log.Warn().Err(err).Str("user", u.ID).Msg("claim guest score")
		}
	}
	return true
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ------------------------------ SCORES -------------------------------------

func (s *Server) handleMyScore(w http.ResponseWriter, r *http.Request) {
	if s.deps.Scores == nil {
		writeError(w, http.StatusServiceUnavailable, "scores_disabled")
		return
	}
	player := s.playerID(w, r)
	best, err := s.deps.Scores.Best(r.Context(), player)
	if errors.Is(err, scores.ErrNoScore) {
		writeError(w, http.StatusNotFound, "no_score")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load best score")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, best)
}

// recordSolve stores a finished, not auto-solved puzzle for player.
func (s *Server) recordSolve(player string, ev game.Event) {
	if s.deps.Scores == nil || player == "" || ev.AutoSolved {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	improved, err := s.deps.Scores.Record(ctx, scores.Result{
		PlayerID:  player,
		ElapsedMs: ev.ElapsedMs,
		HintsUsed: ev.HintsUsed,
		Words:     ev.Total,
		Daily:     ev.Daily,
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", ev.GameID).Msg("record solve")
		return
	}
	log.Info().Str("gameId", ev.GameID).Int64("elapsedMs", ev.ElapsedMs).Bool("best", improved).Msg("solve recorded")
}

// ------------------------------- util --------------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
