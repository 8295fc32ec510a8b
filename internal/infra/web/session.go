package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"convertbox/internal/infra/logging"
)

const sessionCookie = "convertbox_session"

type sessionCtxKey struct{}

// UserID returns the session user's id injected by the session middleware.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// SessionManager mints and parses the signed session cookie. The cookie
// carries only the user id as the JWT subject; everything else lives in the
// database.
type SessionManager struct {
	secret []byte
	secure bool
	ttl    time.Duration
}

func NewSessionManager(secret string, secure bool, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{secret: []byte(secret), secure: secure, ttl: ttl}
}

func (m *SessionManager) Mint(w http.ResponseWriter, userID string) error {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ParseFromRequest extracts the user id claimed by the session cookie. An
// absent, expired or tampered cookie is not an error for callers; they get an
// empty id and the middleware starts a fresh session.
func (m *SessionManager) ParseFromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", err
	}
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", errors.New("invalid session token")
	}
	return claims.Subject, nil
}

// sessionMiddleware resolves or lazily creates the request's user and injects
// the id into the request context. The cookie is re-issued whenever the
// resolved id differs from the claimed one (first visit, stale cookie after
// logout).
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claimed, _ := s.sessions.ParseFromRequest(r)

		user, err := s.userUC.GetOrCreate(r.Context(), claimed)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to resolve session user")
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		if user.ID != claimed {
			if err := s.sessions.Mint(w, user.ID); err != nil {
				s.log.Error().Err(err).Msg("failed to mint session cookie")
				writeError(w, http.StatusInternalServerError, "session unavailable")
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey{}, user.ID)
		ctx = logging.WithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
