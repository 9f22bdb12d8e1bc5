package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"safe-return-server/config"
	"safe-return-server/internal/model"
)

type TokenType string

const (
	AccessTokenType  TokenType = "access"
	RefreshTokenType TokenType = "refresh"
)

const expiryLabelLayout = "2006-01-02 15:04:05 UTC"

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("expired token")
	ErrWrongTokenType = errors.New("wrong token type")
	ErrUnknownToken   = errors.New("unknown token")
)

// Claims : содержимое подписанного токена. Тип токена задаётся явно,
// access и refresh подписываются одним ключом и различаются только полем type
type Claims struct {
	Type          TokenType `json:"type,omitempty"`
	AccountNumber *int64    `json:"account_number,omitempty"`
	Role          string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) TokenType() (TokenType, error) {
	if c.Type == "" {
		return "", fmt.Errorf("%w: нет claim type", ErrMalformedToken)
	}
	return c.Type, nil
}

func (c *Claims) SubjectID() (string, error) {
	if c.Subject == "" {
		return "", fmt.Errorf("%w: нет claim sub", ErrMalformedToken)
	}
	return c.Subject, nil
}

func (c *Claims) AccountID() (int64, error) {
	if c.AccountNumber == nil {
		return 0, fmt.Errorf("%w: нет claim account_number", ErrMalformedToken)
	}
	return *c.AccountNumber, nil
}

func (c *Claims) AccountRole() (model.Role, error) {
	switch role := model.Role(c.Role); role {
	case model.RoleUser, model.RoleAdmin:
		return role, nil
	case "":
		return "", fmt.Errorf("%w: нет claim role", ErrMalformedToken)
	default:
		return "", fmt.Errorf("%w: неизвестная роль %q", ErrMalformedToken, c.Role)
	}
}

// Principal : собирает личность из claims, если хотя бы одного claim нет - токен считается испорченным
func (c *Claims) Principal() (*model.Principal, error) {
	subject, err := c.SubjectID()
	if err != nil {
		return nil, err
	}
	accountID, err := c.AccountID()
	if err != nil {
		return nil, err
	}
	role, err := c.AccountRole()
	if err != nil {
		return nil, err
	}
	return &model.Principal{AccountID: accountID, ExternalID: subject, Role: role}, nil
}

// JWTService : выпуск и разбор токенов. Ключ копируется при создании и больше не меняется
type JWTService struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("[JWTService] пустой ключ подписи")
	}

	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil || accessTTL <= 0 {
		return nil, fmt.Errorf("[JWTService] некорректный access_token_ttl %q: %v", cfg.AccessTokenTTL, err)
	}

	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil || refreshTTL <= 0 {
		return nil, fmt.Errorf("[JWTService] некорректный refresh_token_ttl %q: %v", cfg.RefreshTokenTTL, err)
	}

	return &JWTService{
		secretKey:  []byte(cfg.SecretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}, nil
}

// WithClock : копия сервиса с подменёнными часами
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	clone := *s
	clone.now = now
	return &clone
}

func (s *JWTService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *JWTService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *JWTService) Issue(tokenType TokenType, subject string, accountNumber int64, role string, ttl time.Duration) (string, error) {
	return s.issueAt(s.now(), tokenType, subject, accountNumber, role, ttl)
}

func (s *JWTService) issueAt(now time.Time, tokenType TokenType, subject string, accountNumber int64, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		Type:          tokenType,
		AccountNumber: &accountNumber,
		Role:          role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("[JWTService] ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// GenerateTokenPair : выпускает access и refresh токены с одинаковыми claims, у каждого свой jti
// и готовит запись для хранилища refresh токенов
func (s *JWTService) GenerateTokenPair(principal model.Principal) (*model.TokensPair, *model.RefreshToken, error) {
	now := s.now()
	role := string(principal.Role)

	accessToken, err := s.issueAt(now, AccessTokenType, principal.ExternalID, principal.AccountID, role, s.accessTTL)
	if err != nil {
		return nil, nil, err
	}

	refreshToken, err := s.issueAt(now, RefreshTokenType, principal.ExternalID, principal.AccountID, role, s.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	record := &model.RefreshToken{
		OwnerIdentifier: principal.ExternalID,
		TokenValue:      refreshToken,
		ExpiryLabel:     now.Add(s.refreshTTL).UTC().Format(expiryLabelLayout),
	}

	return &model.TokensPair{AccessToken: accessToken, RefreshToken: refreshToken}, record, nil
}

// Decode : проверяет подпись и разбирает claims. Срок жизни здесь не проверяется,
// для этого есть IsExpired
func (s *JWTService) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	return claims, nil
}

// IsExpired : токен без exp считается просроченным
func (s *JWTService) IsExpired(claims *Claims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}
