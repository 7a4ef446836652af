package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth issues JWT session cookies and guards handlers by role. Tokens are
// backed by a server-side session so logout revokes them immediately.
type Auth struct {
	cfg      config.AuthConfig
	users    domain.Repository
	sessions domain.SessionRepository
	logger   *zerolog.Logger
}

func NewAuth(cfg config.AuthConfig, users domain.Repository, sessions domain.SessionRepository, logger *zerolog.Logger) *Auth {
	return &Auth{cfg: cfg, users: users, sessions: sessions, logger: logger}
}

type sessionClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (a *Auth) tokenTTL() time.Duration {
	return time.Duration(a.cfg.TokenTTLHours) * time.Hour
}

// Login verifies credentials and returns a signed token plus its session.
func (a *Auth) Login(ctx context.Context, email, password string) (string, *models.Session, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Same cost as a real check so timing does not leak which
		// emails exist.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGyEDCEjXbY2uJ3mFJBpeWdyKsaXn1G6"), []byte(password))
		return "", nil, database.ErrNotFound
	}
	if !user.IsActive {
		return "", nil, database.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, database.ErrNotFound
	}

	now := time.Now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(a.tokenTTL()),
	}

	claims := sessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.Token,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}

	if err := a.sessions.SetSession(ctx, session); err != nil {
		return "", nil, err
	}
	return signed, session, nil
}

// Refresh rotates a still-valid session: a fresh token and server-side
// session are issued and the old session is revoked.
func (a *Auth) Refresh(ctx context.Context, r *http.Request) (string, *models.Session, error) {
	current, err := a.sessionFromRequest(r)
	if err != nil {
		return "", nil, err
	}
	if current == nil {
		return "", nil, database.ErrNotFound
	}

	now := time.Now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    current.UserID,
		Role:      current.Role,
		Email:     current.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(a.tokenTTL()),
	}

	claims := sessionClaims{
		UserID: current.UserID,
		Role:   current.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.Token,
			Subject:   current.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}

	if err := a.sessions.SetSession(ctx, session); err != nil {
		return "", nil, err
	}
	if err := a.sessions.ClearSession(ctx, current.Token); err != nil {
		a.logger.Error().Err(err).Msg("stale session clear failed after refresh")
	}
	return signed, session, nil
}

// Logout drops the server-side session for the presented token.
func (a *Auth) Logout(ctx context.Context, r *http.Request) {
	session, err := a.sessionFromRequest(r)
	if err != nil || session == nil {
		return
	}
	if err := a.sessions.ClearSession(ctx, session.Token); err != nil {
		a.logger.Error().Err(err).Msg("session clear failed")
	}
}

func (a *Auth) sessionFromRequest(r *http.Request) (*models.Session, error) {
	raw := ""
	if cookie, err := r.Cookie(a.cfg.CookieName); err == nil {
		raw = cookie.Value
	} else if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		raw = strings.TrimPrefix(header, "Bearer ")
	}
	if raw == "" {
		return nil, nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, err
	}

	session, err := a.sessions.GetSession(r.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SetCookie writes the auth cookie onto the response.
func (a *Auth) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.tokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the auth cookie.
func (a *Auth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Require wraps a handler so only authenticated users with one of the
// given roles get through. An empty role list means any authenticated
// user.
func (a *Auth) Require(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := a.sessionFromRequest(r)
		if err != nil || session == nil {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		if len(roles) > 0 {
			allowed := false
			for _, role := range roles {
				if session.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				writeError(w, http.StatusForbidden, codeForbidden, "insufficient role")
				return
			}
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next(w, r.WithContext(ctx))
	}
}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) *models.Session {
	if s, ok := ctx.Value(sessionContextKey).(*models.Session); ok {
		return s
	}
	return nil
}

// HashPassword wraps bcrypt for user provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
