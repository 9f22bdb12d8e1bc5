package security

import (
	"context"
	"fmt"
	"strings"

	"safe-return-server/internal/model"
)

type contextKey string

const (
	PrincipalContextKey contextKey = "principal"
)

const BearerPrefix = "Bearer "

func WithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, principal)
}

func PrincipalFromContext(ctx context.Context) (*model.Principal, error) {
	principal, ok := ctx.Value(PrincipalContextKey).(*model.Principal)
	if !ok || principal == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return principal, nil
}

// ExtractBearer : возвращает токен после префикса "Bearer "
func ExtractBearer(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	return strings.TrimPrefix(header, BearerPrefix), true
}
