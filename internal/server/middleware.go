package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"tenderd/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyActor contextKey = "actor"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the bearer token against the issuer's JWKS and puts
// the acting admin on the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			s.respondJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
			return
		}
		accessToken := strings.TrimPrefix(header, "Bearer ")

		set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch JWKS")
			s.respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unable to verify token"})
			return
		}

		token, err := jwt.Parse(
			[]byte(accessToken),
			jwt.WithKeySet(set),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Debug("failed to parse JWT")
			s.respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
			return
		}

		actorID, ok := token.Subject()
		if !ok || actorID == "" {
			s.logger.Error("no subject claim in JWT")
			s.respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
			return
		}

		var role string
		if err := token.Get("role", &role); err != nil {
			// role is optional, events are recorded without it
			s.logger.WithError(err).Debug("no role claim in JWT")
		}

		actor := types.Actor{ID: actorID, Role: role}
		ctx := context.WithValue(r.Context(), contextKeyActor, actor)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func actorFromContext(ctx context.Context) types.Actor {
	actor, _ := ctx.Value(contextKeyActor).(types.Actor)
	return actor
}
