package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SgtSlaughter1/flipkart-bff/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionMiddleware resolves the request's session context. A bearer
// credential keys the session directly; without one the request still gets a
// session bound to the configured default user, so cart flows never fail
// outright for "no user".
func SessionMiddleware(store session.Store, defaultUserID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			id := token
			if id == "" {
				// Anonymous sessions ride a cookie so repeat visits
				// keep the same view.
				if c, err := r.Cookie("bff_session"); err == nil && c.Value != "" {
					id = c.Value
				} else {
					id = uuid.NewString()
					http.SetCookie(w, &http.Cookie{
						Name:     "bff_session",
						Value:    id,
						Path:     "/",
						HttpOnly: true,
					})
				}
			}

			s, err := store.Get(r.Context(), id)
			switch {
			case err == nil:
			case errors.Is(err, session.ErrNotFound):
				s = &session.Session{
					ID:        id,
					UserID:    defaultUserID,
					Token:     token,
					CreatedAt: time.Now(),
				}
				if putErr := store.Put(r.Context(), s); putErr != nil {
					log.Warn().Err(putErr).Msg("session store put failed")
				}
			default:
				// A store blip must not overwrite whatever the store holds.
				// Serve the request on an ephemeral session instead.
				log.Warn().Err(err).Msg("session store get failed")
				s = &session.Session{
					ID:        id,
					UserID:    defaultUserID,
					Token:     token,
					CreatedAt: time.Now(),
				}
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionContextKey).(*session.Session); ok {
		return s
	}
	return nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
