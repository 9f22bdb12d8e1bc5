package ports

import (
	"context"
	"safe-return-server/internal/model"
	"safe-return-server/internal/security"
)

// RefreshTokenRepository : хранилище действующих refresh токенов
type RefreshTokenRepository interface {
	Save(ctx context.Context, token *model.RefreshToken) error
	Exists(ctx context.Context, tokenValue string) (bool, error)
	// Rotate атомарно удаляет старую запись и вставляет новую.
	// Если старой записи уже нет, возвращает model.ErrNotFound
	Rotate(ctx context.Context, oldTokenValue string, next *model.RefreshToken) error
	DeleteByValue(ctx context.Context, tokenValue string) (bool, error)
	ListAfter(ctx context.Context, afterID int64, limit int) ([]model.RefreshToken, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type JWTServiceInterface interface {
	GenerateTokenPair(principal model.Principal) (*model.TokensPair, *model.RefreshToken, error)
	Decode(tokenString string) (*security.Claims, error)
	IsExpired(claims *security.Claims) bool
}
