package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"safe-return-server/config"
	"safe-return-server/internal/model"
	"safe-return-server/internal/util"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const memberColumns = `id, external_id, password_hash, name, phone, profile_image_key, created_at`

type MemberRepository struct {
	*config.Database
}

func NewMemberRepository(database *config.Database) *MemberRepository {
	return &MemberRepository{database}
}

// CreateMember : сохраняет нового участника
func (r *MemberRepository) CreateMember(ctx context.Context, member *model.Member) (*model.Member, error) {
	query := `
	INSERT INTO members (external_id, password_hash, name, phone)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + memberColumns

	var created model.Member
	err := sqlx.GetContext(ctx, r.DB, &created, query, member.ExternalID, member.PasswordHash, member.Name, member.Phone)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, model.ErrAlreadyExists
		}
		return nil, util.LogError("[MemberRepo] ошибка вставки данных в БД", err)
	}

	return &created, nil
}

// FindByID : ищет участника по номеру аккаунта
func (r *MemberRepository) FindByID(ctx context.Context, id int64) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByExternalID : ищет участника по логину
func (r *MemberRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE external_id = $1`
	return r.findOne(ctx, query, externalID)
}

func (r *MemberRepository) findOne(ctx context.Context, query string, arg any) (*model.Member, error) {
	var member model.Member
	err := sqlx.GetContext(ctx, r.DB, &member, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[MemberRepo] не удалось найти участника в БД", err)
	}
	return &member, nil
}

// LookupByExternalID : реализация ports.AccountLookup для участников
func (r *MemberRepository) LookupByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	member, err := r.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return member.Account(), nil
}

// UpdateProfileImageKey : запоминает ключ объекта с изображением профиля
func (r *MemberRepository) UpdateProfileImageKey(ctx context.Context, id int64, key string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE members SET profile_image_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return util.LogError("[MemberRepo] не удалось обновить изображение профиля", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[MemberRepo] не удалось проверить обновление", err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListMembers : вывод списка участников с cursor-based пагинацией.
// Курсор "<created_at RFC3339Nano>|<id>", сравнение по паре (created_at, id)
func (r *MemberRepository) ListMembers(ctx context.Context, cursor string, limit int) ([]*model.Member, string, error) {
	query := `
        SELECT ` + memberColumns + `
        FROM members
        WHERE (created_at, id) > ($1, $2)
        ORDER BY created_at ASC, id ASC
        LIMIT $3
    `

	cursorTime, cursorID, err := parseMemberCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	var members []*model.Member
	err = sqlx.SelectContext(ctx, r.DB, &members, query, cursorTime, cursorID, limit+1) // +1 для проверки наличия следующей страницы
	if err != nil {
		return nil, "", util.LogError("[MemberRepo] не удалось получить список участников", err)
	}

	var nextCursor string
	if len(members) > limit {
		members = members[:limit]
		last := members[len(members)-1]
		nextCursor = last.CreatedAt.Format(time.RFC3339Nano) + "|" + strconv.FormatInt(last.ID, 10)
	}

	return members, nextCursor, nil
}

func parseMemberCursor(cursor string) (time.Time, int64, error) {
	if cursor == "" {
		return time.Time{}, 0, nil
	}

	rawTime, rawID, ok := strings.Cut(cursor, "|")
	if !ok {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	cursorTime, err := time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format: %w", err)
	}
	cursorID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format: %w", err)
	}
	return cursorTime, cursorID, nil
}
