package ports

import (
	"context"
	"safe-return-server/internal/model"
)

// AccountLookup : поиск учётной записи по внешнему идентификатору, своя реализация на каждый вид аккаунта
type AccountLookup interface {
	LookupByExternalID(ctx context.Context, externalID string) (*model.Account, error)
}

type PasswordVerifier interface {
	Verify(plain, hashed string) bool
}

type CredentialVerifier interface {
	Verify(ctx context.Context, externalID, password string) (*model.Principal, error)
}

type AuthenticationService interface {
	Login(ctx context.Context, verifier CredentialVerifier, externalID, password string) (*model.TokensPair, error)
	Reissue(ctx context.Context, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshToken string) (expired bool, err error)
}
