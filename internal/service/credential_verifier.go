package service

import (
	"context"
	"errors"
	"fmt"
	"safe-return-server/internal/model"
	"safe-return-server/internal/ports"
	"safe-return-server/internal/security"
	"sync"

	"github.com/google/uuid"
)

var ErrBadCredentials = errors.New("неверный логин или пароль")

// dummyPasswordHash : сравнение с ним выполняется, когда аккаунт не найден,
// чтобы время ответа не выдавало существование логина
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := security.HashPassword(uuid.NewString())
	if err != nil {
		return ""
	}
	return hash
})

// CredentialVerifier : проверка логина и пароля для одного вида аккаунтов
type CredentialVerifier struct {
	accounts  ports.AccountLookup
	passwords ports.PasswordVerifier
}

func NewCredentialVerifier(accounts ports.AccountLookup, passwords ports.PasswordVerifier) *CredentialVerifier {
	return &CredentialVerifier{
		accounts:  accounts,
		passwords: passwords,
	}
}

// Verify : возвращает Principal при совпадении пароля.
// Неизвестный логин, пустые поля и неверный пароль дают одну и ту же ErrBadCredentials
func (v *CredentialVerifier) Verify(ctx context.Context, externalID, password string) (*model.Principal, error) {
	account, err := v.accounts.LookupByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			v.passwords.Verify(password, dummyPasswordHash())
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("[CredentialVerifier] ошибка поиска аккаунта: %w", err)
	}

	if !v.passwords.Verify(password, account.PasswordHash) {
		return nil, ErrBadCredentials
	}

	return &model.Principal{
		AccountID:  account.ID,
		ExternalID: account.ExternalID,
		Role:       account.Role,
	}, nil
}
