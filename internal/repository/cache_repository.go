package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"safe-return-server/config"
	"safe-return-server/internal/model"
	"safe-return-server/internal/util"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) SetMember(ctx context.Context, member *model.Member) error {
	data, err := json.Marshal(member)
	if err != nil {
		return util.LogError("ошибка сериализации профиля", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(member.ID), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

// GetMember : возвращает nil без ошибки, если профиля нет в кэше
func (r *CacheRepository) GetMember(ctx context.Context, accountID int64) (*model.Member, error) {
	val, err := r.client.Client.Get(ctx, r.key(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, util.LogError("ошибка получения профиля из Redis", err)
	}

	var member model.Member
	if err := json.Unmarshal([]byte(val), &member); err != nil {
		return nil, util.LogError("ошибка десериализации профиля из кэша", err)
	}
	return &member, nil
}

func (r *CacheRepository) DeleteMember(ctx context.Context, accountID int64) error {
	if err := r.client.Client.Del(ctx, r.key(accountID)).Err(); err != nil {
		return util.LogError("ошибка удаления профиля из Redis", err)
	}
	return nil
}

func (r *CacheRepository) key(accountID int64) string {
	return fmt.Sprintf("member:%d", accountID)
}
