package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"safe-return-server/internal/model"
	"safe-return-server/internal/ports"
	"safe-return-server/internal/security"
	"safe-return-server/internal/util"
)

type AuthenticationService struct {
	tokens     ports.RefreshTokenRepository
	jwtService ports.JWTServiceInterface
}

func NewAuthenticationService(tokens ports.RefreshTokenRepository, jwtService ports.JWTServiceInterface) *AuthenticationService {
	return &AuthenticationService{
		tokens:     tokens,
		jwtService: jwtService,
	}
}

// Login проверяет логин и пароль и выпускает пару токенов.
// Запись refresh токена создаётся только при успешной проверке
func (s *AuthenticationService) Login(ctx context.Context, verifier ports.CredentialVerifier, externalID, password string) (*model.TokensPair, error) {
	principal, err := verifier.Verify(ctx, externalID, password)
	if err != nil {
		return nil, err
	}

	tokens, record, err := s.jwtService.GenerateTokenPair(*principal)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	if err := s.tokens.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка сохранения refresh токена: %w", err)
	}

	return tokens, nil
}

// Reissue обменивает refresh токен на новую пару токенов.
// Проверки идут по порядку: подпись, срок жизни, тип, наличие в хранилище.
// Старая запись удаляется и новая вставляется в одной транзакции, поэтому
// уже использованный refresh токен повторно не пройдёт
//
// Возвращает:
//   - security.ErrMalformedToken, если токен не разбирается или подпись не сходится
//   - security.ErrExpiredToken, если срок жизни истёк
//   - security.ErrWrongTokenType, если передан не refresh токен
//   - security.ErrUnknownToken, если токена нет в хранилище
func (s *AuthenticationService) Reissue(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	claims, err := s.jwtService.Decode(refreshToken)
	if err != nil {
		return nil, err
	}

	if s.jwtService.IsExpired(claims) {
		return nil, security.ErrExpiredToken
	}

	if err := requireRefreshType(claims); err != nil {
		return nil, err
	}

	principal, err := claims.Principal()
	if err != nil {
		return nil, err
	}

	tokens, record, err := s.jwtService.GenerateTokenPair(*principal)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	if err := s.tokens.Rotate(ctx, refreshToken, record); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			log.Printf("[AuthService] refresh токен владельца %s уже отозван или использован", principal.ExternalID)
			return nil, security.ErrUnknownToken
		}
		return nil, util.LogError("[AuthService] не удалось выполнить ротацию refresh токена", err)
	}

	return tokens, nil
}

// Logout удаляет запись refresh токена. Просроченный токен не мешает выходу,
// в этом случае expired будет true
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	exists, err := s.tokens.Exists(ctx, refreshToken)
	if err != nil {
		return false, fmt.Errorf("[AuthService] ошибка проверки refresh токена: %w", err)
	}
	if !exists {
		return false, security.ErrUnknownToken
	}

	claims, err := s.jwtService.Decode(refreshToken)
	if err != nil {
		return false, err
	}
	if err := requireRefreshType(claims); err != nil {
		return false, err
	}
	expired := s.jwtService.IsExpired(claims)

	deleted, err := s.tokens.DeleteByValue(ctx, refreshToken)
	if err != nil {
		return false, fmt.Errorf("[AuthService] ошибка удаления refresh токена: %w", err)
	}
	if !deleted {
		return false, security.ErrUnknownToken
	}

	return expired, nil
}

func requireRefreshType(claims *security.Claims) error {
	tokenType, err := claims.TokenType()
	if err != nil {
		return err
	}
	if tokenType != security.RefreshTokenType {
		return security.ErrWrongTokenType
	}
	return nil
}
