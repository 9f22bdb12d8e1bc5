package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"safe-return-server/internal/model"
	"safe-return-server/internal/ports"
	"safe-return-server/internal/security"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("некорректные данные")

type MemberService struct {
	memberRepository ports.MemberRepository
	cache            ports.ProfileCache
	storage          ports.S3Storage
	presignTTL       time.Duration
}

func NewMemberService(
	memberRepository ports.MemberRepository,
	cache ports.ProfileCache,
	storage ports.S3Storage,
	presignTTL time.Duration,
) *MemberService {
	return &MemberService{
		memberRepository: memberRepository,
		cache:            cache,
		storage:          storage,
		presignTTL:       presignTTL,
	}
}

func (s *MemberService) SignUp(ctx context.Context, externalID, password, name, phone string) (*model.Member, error) {
	if len(externalID) < 2 || len(externalID) > 32 {
		return nil, fmt.Errorf("%w: логин должен быть от 2 до 32 символов", ErrValidation)
	}
	for _, c := range externalID {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return nil, fmt.Errorf("%w: логин должен содержать только буквы и цифры", ErrValidation)
		}
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[MemberService] не удалось создать хэш пароля: %w", err)
	}

	created, err := s.memberRepository.CreateMember(ctx, &model.Member{
		ExternalID:   externalID,
		PasswordHash: hash,
		Name:         name,
		Phone:        phone,
	})
	if err != nil {
		return nil, fmt.Errorf("[MemberService] ошибка создания участника: %w", err)
	}

	return created, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}

	var letterCount, digitCount int
	for _, c := range password {
		switch {
		case unicode.IsLetter(c):
			letterCount++
		case unicode.IsDigit(c):
			digitCount++
		}
	}

	if letterCount == 0 || digitCount == 0 {
		return fmt.Errorf("пароль должен содержать буквы и цифры")
	}
	return nil
}

// GetMe : профиль текущего участника, сначала из кэша.
// Ошибки Redis не мешают чтению из БД
func (s *MemberService) GetMe(ctx context.Context) (*model.Member, error) {
	principal, err := security.PrincipalFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("[MemberService] %w", err)
	}

	if cached, err := s.cache.GetMember(ctx, principal.AccountID); err == nil && cached != nil {
		return cached, nil
	}

	member, err := s.memberRepository.FindByID(ctx, principal.AccountID)
	if err != nil {
		return nil, fmt.Errorf("[MemberService] участник не найден: %w", err)
	}

	if err := s.cache.SetMember(ctx, member); err != nil {
		log.Printf("[MemberService] не удалось положить профиль в кэш: %v", err)
	}

	return member, nil
}

// ProfileImageUploadURL : выдаёт presigned PUT ссылку под новый ключ объекта
// и запоминает ключ за участником. Старый объект удаляется
func (s *MemberService) ProfileImageUploadURL(ctx context.Context) (string, error) {
	principal, err := security.PrincipalFromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("[MemberService] %w", err)
	}

	member, err := s.memberRepository.FindByID(ctx, principal.AccountID)
	if err != nil {
		return "", fmt.Errorf("[MemberService] участник не найден: %w", err)
	}

	key := fmt.Sprintf("profiles/%d/%s", member.ID, uuid.NewString())
	url, err := s.storage.GeneratePresignedPutURL(ctx, key, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("[MemberService] ошибка генерации ссылки загрузки: %w", err)
	}

	if err := s.memberRepository.UpdateProfileImageKey(ctx, member.ID, key); err != nil {
		return "", fmt.Errorf("[MemberService] ошибка сохранения ключа изображения: %w", err)
	}

	if err := s.cache.DeleteMember(ctx, member.ID); err != nil {
		log.Printf("[MemberService] не удалось сбросить кэш профиля: %v", err)
	}

	if member.ProfileImageKey != nil {
		if err := s.storage.DeleteObject(ctx, *member.ProfileImageKey); err != nil {
			log.Printf("[MemberService] не удалось удалить старое изображение %s: %v", *member.ProfileImageKey, err)
		}
	}

	return url, nil
}

func (s *MemberService) ProfileImageURL(ctx context.Context) (string, error) {
	member, err := s.GetMe(ctx)
	if err != nil {
		return "", err
	}
	if member.ProfileImageKey == nil {
		return "", fmt.Errorf("[MemberService] изображение профиля: %w", model.ErrNotFound)
	}

	url, err := s.storage.GeneratePresignedGetURL(ctx, *member.ProfileImageKey, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("[MemberService] ошибка генерации ссылки: %w", err)
	}
	return url, nil
}

func (s *MemberService) ListMembers(ctx context.Context, cursor string, limit int) ([]*model.Member, string, error) {
	members, nextCursor, err := s.memberRepository.ListMembers(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("[MemberService] ошибка получения списка: %w", err)
	}
	return members, nextCursor, nil
}
