// Package auth provides optional player accounts: bcrypt passwords, HS256
// JWTs carried in a cookie or bearer header, and an anonymous cookie id for
// guests so their best score can be claimed later.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers missing, malformed, expired and badly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Options configure a Service.
type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	AnonCookie string
	Secure     bool // production cookies: Secure + SameSite=None
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service issues and verifies tokens and manages accounts.
type Service struct {
	db     *sql.DB
	secret []byte
	ttl    time.Duration
	cookie string
	anon   string
	secure bool
	cost   int
	now    func() time.Time
}

// NewService builds a Service over a database holding the users table.
func NewService(db *sql.DB, o Options) *Service {
	s := &Service{
		db:     db,
		secret: []byte(o.Secret),
		ttl:    o.TTL,
		cookie: o.CookieName,
		anon:   o.AnonCookie,
		secure: o.Secure,
		cost:   o.BcryptCost,
		now:    time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 14 * 24 * time.Hour
	}
	if s.cookie == "" {
		s.cookie = "wordsearch_token"
	}
	if s.anon == "" {
		s.anon = "wordsearch_anon"
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	return s
}

// Identity is the authenticated caller placed into request context.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Sign creates an HS256 JWT for u and returns it with its expiry.
func (s *Service) Sign(u *User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       u.ID,
		"username": u.Username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// Parse verifies a token and returns the identity it carries.
func (s *Service) Parse(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: id, Username: username}, nil
}

// SetCookie writes the auth token cookie.
func (s *Service) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, s.cookieFor(s.cookie, token, exp))
}

// ClearCookie deletes the auth token cookie.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	c := s.cookieFor(s.cookie, "", time.Time{})
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// AnonID returns the guest id cookie, setting a new one when missing.
func (s *Service) AnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.anon); err == nil && c.Value != "" {
		return c.Value
	}
	id := NewID()
	http.SetCookie(w, s.cookieFor(s.anon, id, s.now().Add(180*24*time.Hour)))
	return id
}

func (s *Service) cookieFor(name, value string, exp time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
		Expires:  exp,
	}
}

// tokenFromRequest extracts a bearer token or the auth cookie.
func (s *Service) tokenFromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cookie); err == nil {
		return c.Value
	}
	return ""
}

// identify resolves the caller and checks the account still exists.
func (s *Service) identify(r *http.Request) (*Identity, error) {
	tok := s.tokenFromRequest(r)
	if tok == "" {
		return nil, ErrInvalidToken
	}
	id, err := s.Parse(tok)
	if err != nil {
		return nil, err
	}
	if _, err := s.FindByID(r.Context(), id.ID); err != nil {
		return nil, ErrInvalidToken
	}
	return id, nil
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity set by Require or Optional.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
