package ports

import (
	"context"
	"safe-return-server/internal/model"
)

type MemberRepository interface {
	AccountLookup
	CreateMember(ctx context.Context, member *model.Member) (*model.Member, error)
	FindByID(ctx context.Context, id int64) (*model.Member, error)
	UpdateProfileImageKey(ctx context.Context, id int64, key string) error
	ListMembers(ctx context.Context, cursor string, limit int) ([]*model.Member, string, error)
}

type MemberService interface {
	SignUp(ctx context.Context, externalID, password, name, phone string) (*model.Member, error)
	GetMe(ctx context.Context) (*model.Member, error)
	ProfileImageUploadURL(ctx context.Context) (string, error)
	ProfileImageURL(ctx context.Context) (string, error)
	ListMembers(ctx context.Context, cursor string, limit int) ([]*model.Member, string, error)
}
