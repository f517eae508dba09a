// Package study — service.go координирует обработку события ответа
// от начала до конца: награды → леджер профиля, параллельно с этим —
// обновление записи повторения. Единственная точка входа для
// внешнего коллаборатора «учебная сессия».
package study

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"edquest.ru/study-engine/internal/common"
	"edquest.ru/study-engine/internal/features/equipment"
	"edquest.ru/study-engine/internal/features/progression"
	"edquest.ru/study-engine/internal/features/rewards"
	"edquest.ru/study-engine/internal/features/srs"
)

// ErrRateLimited — пользователь шлёт события слишком часто.
var ErrRateLimited = errors.New("слишком много событий, попробуйте позже")

// Result — итог обработки одного события ответа.
type Result struct {
	Reward      rewards.Reward
	Profile     progression.Profile
	LeveledUp   bool
	NewStreak   int
	Review      *srs.ReviewRecord
	HintGranted bool // Разыгранная бесплатная подсказка (hint_chance)
}

// Service — пайплайн обработки ответов.
type Service struct {
	equipment   *equipment.Service
	calculator  *rewards.Calculator
	progression *progression.Service
	scheduler   *srs.Service
	limiter     *RateLimiter
	rnd         rewards.Source
	timezone    string
}

// NewService создаёт пайплайн. Источник случайности инжектируется,
// чтобы тесты могли форсировать розыгрыши детерминированно.
func NewService(
	equipmentSvc *equipment.Service,
	calculator *rewards.Calculator,
	progressionSvc *progression.Service,
	scheduler *srs.Service,
	limiter *RateLimiter,
	rnd rewards.Source,
	timezone string,
) *Service {
	if rnd == nil {
		rnd = rewards.DefaultSource
	}
	return &Service{
		equipment:   equipmentSvc,
		calculator:  calculator,
		progression: progressionSvc,
		scheduler:   scheduler,
		limiter:     limiter,
		rnd:         rnd,
		timezone:    timezone,
	}
}

// Process обрабатывает одно событие ответа.
//
// Порядок:
//  1. Валидация ввода — до любых мутаций
//  2. Чтение профиля (стрик для бонуса, детект первого ответа за день)
//  3. Вектор бонусов экипировки (из кэша сессии)
//  4. Расчёт награды (чистый, без внешних вызовов)
//  5. Леджер профиля и планировщик повторений; каждая запись атомарна,
//     упавшая запись повторяется ровно один раз
func (s *Service) Process(ctx context.Context, event rewards.AnswerEvent) (*Result, error) {
	if event.UserID == "" {
		return nil, common.ErrInvalidUser
	}
	if event.ItemID == "" {
		return nil, common.ErrInvalidItem
	}
	if event.Difficulty < 1 || event.Difficulty > 5 {
		return nil, common.ErrInvalidDifficulty
	}
	if s.limiter != nil && !s.limiter.Allow(event.UserID) {
		return nil, ErrRateLimited
	}

	profile, err := s.progression.Get(ctx, event.UserID)
	if err != nil {
		return nil, err
	}

	// Первый ответ за календарный день — условие daily_login
	if !event.Context.DailyLogin {
		dayStart := common.StartOfDay(event.AnsweredAt, s.timezone)
		event.Context.DailyLogin = profile.LastAnswerAt == nil || profile.LastAnswerAt.Before(dayStart)
	}

	bonuses, err := s.equipment.Vector(ctx, event.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	reward, err := s.calculator.Compute(event, profile.CurrentStreak, bonuses, s.rnd)
	if err != nil {
		return nil, err
	}

	outcome := progression.OutcomeIncorrect
	if event.IsCorrect {
		outcome = progression.OutcomeCorrect
	}

	// Обе записи атомарны по отдельности, поэтому повтор после отказа
	// не может задвоить уже применённую часть
	var applied *progression.ApplyResult
	err = retryOnce(func() error {
		var applyErr error
		applied, applyErr = s.progression.Apply(ctx, event.UserID,
			int64(reward.XP), int64(reward.Gold), outcome, reward.CriticalHit)
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	var review *srs.ReviewRecord
	err = retryOnce(func() error {
		var reviewErr error
		review, reviewErr = s.scheduler.Review(ctx, event.UserID, event.ItemID,
			event.IsCorrect, srs.RatingForDifficulty(event.Difficulty))
		return reviewErr
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Reward:      reward,
		Profile:     applied.Profile,
		LeveledUp:   applied.LeveledUp,
		NewStreak:   applied.NewStreak,
		Review:      review,
		HintGranted: s.calculator.RollHint(bonuses, s.rnd),
	}

	log.WithFields(log.Fields{
		"user_id":  event.UserID,
		"item_id":  event.ItemID,
		"correct":  event.IsCorrect,
		"xp":       reward.XP,
		"gold":     reward.Gold,
		"critical": reward.CriticalHit,
		"streak":   result.NewStreak,
	}).Info("Ответ обработан")

	return result, nil
}

// retryOnce выполняет fn и повторяет её ровно один раз, если отказ
// временный (хранилище недоступно). Невалидный ввод не повторяется.
func retryOnce(fn func() error) error {
	err := fn()
	if err == nil || !errors.Is(err, common.ErrStoreUnavailable) {
		return err
	}
	log.WithError(err).Warn("Временный отказ хранилища, повторяем запись")
	return fn()
}
