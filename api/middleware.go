package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mockinterview/interview"
	"mockinterview/logger"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	headerUserID    = "X-User-ID"
	headerRequestID = "X-Request-ID"
)

type contextKey int

const (
	userKey contextKey = iota
	requestIDKey
)

var errMissingIdentity = errors.New("missing or invalid user identity")

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)
		trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("request.id", requestID))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestLoggerMiddleware(logger *logger.LogMiddleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger.Logger(ctx).Info("Request Received",
				zap.String("url", r.URL.Path),
				zap.String("method", r.Method),
				zap.String("request_id", requestID(ctx)))
			next.ServeHTTP(ww, r)
			logger.Logger(ctx).Info("Request Completed",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestID(ctx)))
		})
	}
}

// userMiddleware loads the profile named by the gateway-supplied X-User-ID header.
func (s *Server) userMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := strconv.ParseInt(r.Header.Get(headerUserID), 10, 64)
		if err != nil || userID <= 0 {
			s.writeError(w, r, errMissingIdentity)
			return
		}

		user, err := s.users.UserProfile(ctx, userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("user.id", user.ID))
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userKey, user)))
	})
}

func currentUser(ctx context.Context) *interview.UserProfile {
	user, _ := ctx.Value(userKey).(*interview.UserProfile)
	return user
}
