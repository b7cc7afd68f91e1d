package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

type contextKey string

const (
	userIDKey contextKey = "userID"

	// HeaderUserID идентификатор пользователя, проставляемый шлюзом после аутентификации
	HeaderUserID = "X-User-ID"
	// HeaderUserEmail и HeaderUserName используются при создании профиля по умолчанию
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"

	msgMissingUserID = "отсутствует ID пользователя"
)

// Auth требует заголовок X-User-ID и кладет его в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" || strings.Contains(userID, "/") {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID кладет userID в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID достает userID, положенный Auth
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
