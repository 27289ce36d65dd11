// Package middleware содержит HTTP middleware банковского бэк-офиса.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmeshcher/bankoffice-system/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// SessionResolver описывает разрешение токена сессии в пользователя.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware проверяет bearer-токен сессии и кладёт пользователя в
// контекст запроса. Токен принимается из заголовка Authorization как в виде
// «Bearer <token>», так и в сыром виде.
type AuthMiddleware struct {
	resolver SessionResolver
}

// NewAuthMiddleware создаёт middleware с указанным резолвером сессий.
func NewAuthMiddleware(resolver SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// TokenFromHeader извлекает токен сессии из значения заголовка Authorization.
func TokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return header
}

// Middleware разрешает сессию запроса и добавляет пользователя в контекст.
// Неизвестный или просроченный токен завершает запрос кодом 401.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromHeader(r.Header.Get("Authorization"))
		if token == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		user, err := a.resolver.ResolveSession(r.Context(), token)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext извлекает аутентифицированного пользователя из контекста запроса.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}
