package model

import "time"

// RefreshToken : запись о действующем refresh токене.
// ExpiryLabel только для отображения, настоящий срок жизни лежит в claims самого токена
type RefreshToken struct {
	ID              int64     `db:"id"`
	OwnerIdentifier string    `db:"owner_identifier"`
	TokenValue      string    `db:"token_value"`
	ExpiryLabel     string    `db:"expiry_label"`
	CreatedAt       time.Time `db:"created_at"`
}

// TokensPair содержит пару access и refresh токенов
type TokensPair struct {
	AccessToken  string
	RefreshToken string
}
