package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account : учётная запись, по которой проверяются логин и пароль
type Account struct {
	ID           int64
	ExternalID   string
	PasswordHash string
	Role         Role
}

// Principal : личность, восстановленная из claims access токена.
// Живёт только в рамках одного запроса и никогда не сохраняется
type Principal struct {
	AccountID  int64
	ExternalID string
	Role       Role
}

type Member struct {
	ID              int64     `db:"id" json:"id"`
	ExternalID      string    `db:"external_id" json:"external_id"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	Name            string    `db:"name" json:"name"`
	Phone           string    `db:"phone" json:"phone"`
	ProfileImageKey *string   `db:"profile_image_key" json:"profile_image_key,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

func (m *Member) Account() *Account {
	return &Account{
		ID:           m.ID,
		ExternalID:   m.ExternalID,
		PasswordHash: m.PasswordHash,
		Role:         RoleUser,
	}
}

type Admin struct {
	ID           int64     `db:"id"`
	ExternalID   string    `db:"external_id"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (a *Admin) Account() *Account {
	return &Account{
		ID:           a.ID,
		ExternalID:   a.ExternalID,
		PasswordHash: a.PasswordHash,
		Role:         RoleAdmin,
	}
}
