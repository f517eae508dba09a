// Package progression — service.go содержит бизнес-логику леджера прогресса.
// Валидация, правило no-op, создание профиля при первом обращении.
package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"edquest.ru/study-engine/internal/common"
)

// Store — доступ к профилям в хранилище.
type Store interface {
	Create(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*Profile, error)
	Apply(ctx context.Context, userID string, xpGain, goldGain int64, outcome Outcome, critical bool, now time.Time) (*ApplyResult, error)
}

// Service — леджер прогресса. Единственная точка мутации профиля.
type Service struct {
	store Store
}

// NewService создаёт сервис прогресса.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get возвращает профиль пользователя, создавая его при первом обращении.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, common.ErrInvalidUser
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		// Профиль не найден — создаём (первое событие пользователя)
		if errors.Is(err, common.ErrRecordNotFound) {
			if err := s.store.Create(ctx, userID); err != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
			}
			return s.store.Get(ctx, userID)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return profile, nil
}

// Apply применяет награду и исход ответа к профилю.
//
// Правило no-op: нулевые начисления БЕЗ исхода ответа не трогают
// профиль вовсе — возвращается текущее состояние с LeveledUp=false.
// Неверный ответ (награда {0,0}, OutcomeIncorrect) не подпадает под
// no-op: он фиксирует сброс стрика и счётчик вопросов.
//
// При отказе хранилища профиль в памяти и в БД остаётся нетронутым:
// никаких оптимистичных мутаций до подтверждения записи.
func (s *Service) Apply(ctx context.Context, userID string, xpGain, goldGain int64, outcome Outcome, critical bool) (*ApplyResult, error) {
	if userID == "" {
		return nil, common.ErrInvalidUser
	}
	if xpGain < 0 || goldGain < 0 {
		return nil, common.ErrInvalidAmount
	}

	if xpGain == 0 && goldGain == 0 && outcome == OutcomeNone {
		profile, err := s.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ApplyResult{Profile: *profile, LeveledUp: false, NewStreak: profile.CurrentStreak}, nil
	}

	// Гарантируем существование профиля до применения
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	result, err := s.store.Apply(ctx, userID, xpGain, goldGain, outcome, critical, time.Now())
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	if result.LeveledUp {
		log.WithFields(log.Fields{
			"user_id": userID,
			"level":   result.Profile.Level,
			"xp":      result.Profile.XP,
		}).Info("Новый уровень")
	}

	return result, nil
}
