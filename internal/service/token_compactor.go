package service

import (
	"context"
	"fmt"
	"log"
	"safe-return-server/config"
	"safe-return-server/internal/ports"
	"time"
)

// TokenCompactor : периодически удаляет записи refresh токенов,
// у которых истёк срок жизни или испорчена подпись. С обработкой запросов не связан
type TokenCompactor struct {
	tokens     ports.RefreshTokenRepository
	jwtService ports.JWTServiceInterface
	interval   time.Duration
	batchSize  int
}

func NewTokenCompactor(tokens ports.RefreshTokenRepository, jwtService ports.JWTServiceInterface, cfg *config.CompactionConfig) (*TokenCompactor, error) {
	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("[TokenCompactor] некорректный интервал %q: %v", cfg.Interval, err)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("[TokenCompactor] размер пачки должен быть положительным")
	}

	return &TokenCompactor{
		tokens:     tokens,
		jwtService: jwtService,
		interval:   interval,
		batchSize:  cfg.BatchSize,
	}, nil
}

// Run : первый проход сразу, дальше по таймеру до отмены контекста
func (c *TokenCompactor) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if removed, err := c.Compact(ctx); err != nil {
			log.Printf("[TokenCompactor] ошибка очистки refresh токенов: %v", err)
		} else if removed > 0 {
			log.Printf("[TokenCompactor] удалено просроченных refresh токенов: %d", removed)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Compact : один проход по всей таблице пачками по возрастанию id
func (c *TokenCompactor) Compact(ctx context.Context) (int64, error) {
	var afterID, removed int64

	for {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		batch, err := c.tokens.ListAfter(ctx, afterID, c.batchSize)
		if err != nil {
			return removed, err
		}
		if len(batch) == 0 {
			return removed, nil
		}

		var stale []int64
		for _, token := range batch {
			claims, err := c.jwtService.Decode(token.TokenValue)
			if err != nil || c.jwtService.IsExpired(claims) {
				stale = append(stale, token.ID)
			}
		}

		deleted, err := c.tokens.DeleteByIDs(ctx, stale)
		if err != nil {
			return removed, err
		}
		removed += deleted

		if len(batch) < c.batchSize {
			return removed, nil
		}
		afterID = batch[len(batch)-1].ID
	}
}
