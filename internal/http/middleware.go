package http

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ProfileHeader = "X-Profile-ID"
	ProfileCookie = "haven_profile"
)

type contextKey string

const profileIDKey contextKey = "profile_id"

var validProfileID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ProfileMiddleware identifies the buyer profile owning the cart. The header
// wins over the cookie; a request carrying neither gets a fresh profile id
// returned as a cookie.
func ProfileMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profileID := r.Header.Get(ProfileHeader)
		if profileID == "" {
			if c, err := r.Cookie(ProfileCookie); err == nil {
				profileID = c.Value
			}
		}

		if !validProfileID.MatchString(profileID) {
			profileID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ProfileCookie,
				Value:    profileID,
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), profileIDKey, profileID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithProfileID(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, profileIDKey, profileID)
}

func getProfileIDFromContext(ctx context.Context) string {
	if profileID, ok := ctx.Value(profileIDKey).(string); ok {
		return profileID
	}
	return ""
}

// RequestLogger logs every request once it completes.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status_code", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_size", ww.BytesWritten()),
				zap.String("client_ip", r.RemoteAddr),
			}

			switch {
			case ww.Status() >= 500:
				logger.Error("HTTP request completed with server error", fields...)
			case ww.Status() >= 400:
				logger.Warn("HTTP request completed with client error", fields...)
			default:
				logger.Info("HTTP request completed", fields...)
			}
		})
	}
}

// MaxBodySize limits request bodies to n bytes.
func MaxBodySize(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
