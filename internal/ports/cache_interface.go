package ports

import (
	"context"
	"safe-return-server/internal/model"
)

// ProfileCache : Redis слой для профилей участников
type ProfileCache interface {
	SetMember(ctx context.Context, member *model.Member) error
	GetMember(ctx context.Context, accountID int64) (*model.Member, error)
	DeleteMember(ctx context.Context, accountID int64) error
}
