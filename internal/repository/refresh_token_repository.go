package repository

import (
	"context"
	"database/sql"
	"errors"
	"safe-return-server/config"
	"safe-return-server/internal/model"
	"safe-return-server/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type RefreshTokenRepository struct {
	*config.Database
}

func NewRefreshTokenRepository(database *config.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{database}
}

// Save сохраняет новую запись refresh токена, заполняет ID и CreatedAt
func (r *RefreshTokenRepository) Save(ctx context.Context, refreshToken *model.RefreshToken) error {
	return insertRefreshToken(ctx, r.DB, refreshToken)
}

func insertRefreshToken(ctx context.Context, exec sqlx.ExtContext, refreshToken *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (owner_identifier, token_value, expiry_label)
				VALUES ($1, $2, $3)
				RETURNING id, created_at`

	err := exec.QueryRowxContext(ctx, query,
		refreshToken.OwnerIdentifier,
		refreshToken.TokenValue,
		refreshToken.ExpiryLabel,
	).Scan(&refreshToken.ID, &refreshToken.CreatedAt)
	if err != nil {
		return util.LogError("[TokenRepo] ошибка вставки refresh токена", err)
	}

	return nil
}

// Exists проверяет, хранится ли токен с точно таким значением
func (r *RefreshTokenRepository) Exists(ctx context.Context, tokenValue string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token_value = $1)`
	if err := sqlx.GetContext(ctx, r.DB, &exists, query, tokenValue); err != nil {
		return false, util.LogError("[TokenRepo] ошибка проверки refresh токена", err)
	}
	return exists, nil
}

// Rotate заменяет старый refresh токен новым в одной транзакции.
// Строка старого токена блокируется FOR UPDATE, поэтому из двух одновременных
// ротаций одного токена успешной будет только одна, вторая получит ErrNotFound
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldTokenValue string, next *model.RefreshToken) error {
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, `SELECT id FROM refresh_tokens WHERE token_value = $1 FOR UPDATE`, oldTokenValue)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		if err != nil {
			return util.LogError("[TokenRepo] ошибка блокировки refresh токена", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id); err != nil {
			return util.LogError("[TokenRepo] ошибка удаления старого refresh токена", err)
		}

		return insertRefreshToken(ctx, tx, next)
	})
}

// DeleteByValue удаляет запись по значению токена.
// Возвращает false, если такой записи не было
func (r *RefreshTokenRepository) DeleteByValue(ctx context.Context, tokenValue string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_value = $1`, tokenValue)
	if err != nil {
		return false, util.LogError("[TokenRepo] ошибка удаления refresh токена", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("[TokenRepo] не удалось проверить, удалён ли токен", err)
	}

	return rowsAffected > 0, nil
}

// ListAfter : страница записей с id больше afterID, по возрастанию id
func (r *RefreshTokenRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]model.RefreshToken, error) {
	query := `
		SELECT id, owner_identifier, token_value, expiry_label, created_at
		FROM refresh_tokens
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`

	var tokens []model.RefreshToken
	if err := sqlx.SelectContext(ctx, r.DB, &tokens, query, afterID, limit); err != nil {
		return nil, util.LogError("[TokenRepo] ошибка чтения refresh токенов", err)
	}
	return tokens, nil
}

func (r *RefreshTokenRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, util.LogError("[TokenRepo] ошибка пакетного удаления refresh токенов", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[TokenRepo] не удалось получить число удалённых токенов", err)
	}
	return deleted, nil
}
