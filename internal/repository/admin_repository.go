package repository

import (
	"context"
	"database/sql"
	"errors"
	"safe-return-server/config"
	"safe-return-server/internal/model"
	"safe-return-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type AdminRepository struct {
	*config.Database
}

func NewAdminRepository(database *config.Database) *AdminRepository {
	return &AdminRepository{database}
}

// LookupByExternalID : реализация ports.AccountLookup для администраторов
func (r *AdminRepository) LookupByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	query := `SELECT id, external_id, password_hash, created_at FROM admins WHERE external_id = $1`

	var admin model.Admin
	err := sqlx.GetContext(ctx, r.DB, &admin, query, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[AdminRepo] не удалось найти администратора", err)
	}
	return admin.Account(), nil
}
