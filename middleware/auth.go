package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"taskboard/logging"
	"taskboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	VerifyToken(token string) (primitive.ObjectID, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// authenticated user id in the request context.
func JWTAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				unauthorized(w, "authorization header missing")
				return
			}

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenStr) == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_BEARER_PREFIX_MISSING, Description: Bearer prefix missing for request to %s %s", r.Method, r.URL.Path)
				unauthorized(w, "authorization header must be a bearer token")
				return
			}

			userID, err := verifier.VerifyToken(strings.TrimSpace(tokenStr))
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
				unauthorized(w, "invalid or expired token")
				return
			}

			logging.Logger.Debugf("Event ID: JWT_AUTH_SUCCESS, Description: User %s authenticated for %s %s", userID.Hex(), r.Method, r.URL.Path)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user id placed in ctx by JWTAuth.
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return id, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.MessageResponse{Msg: msg})
}
