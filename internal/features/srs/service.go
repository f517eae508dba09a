// Package srs — service.go координирует обновления записей повторения.
// Конкурентные события одной пары (пользователь, вопрос) сериализуются
// замком по ключу: иначе два параллельных верных ответа прочитают один
// и тот же repetition_count и продвинут запись дважды.
package srs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"edquest.ru/study-engine/internal/common"
)

// Store — доступ к записям повторения в хранилище.
type Store interface {
	Get(ctx context.Context, userID, itemID string) (*ReviewRecord, error)
	Upsert(ctx context.Context, rec *ReviewRecord) error
	Due(ctx context.Context, userID string, now time.Time, limit int) ([]ReviewRecord, error)
	Struggling(ctx context.Context, userID string, limit int) ([]ReviewRecord, error)
}

// Service — планировщик интервального повторения.
type Service struct {
	store            Store
	maxIntervalHours int

	mu    sync.Mutex
	locks map[string]*sync.Mutex // Замки по ключу "user|item"
}

// NewService создаёт сервис планировщика.
func NewService(store Store, maxIntervalHours int) *Service {
	return &Service{
		store:            store,
		maxIntervalHours: maxIntervalHours,
		locks:            make(map[string]*sync.Mutex),
	}
}

// keyLock возвращает мьютекс пары (пользователь, вопрос), создавая при
// необходимости. Замки не удаляются: их столько же, сколько активных
// пар за время жизни процесса.
func (s *Service) keyLock(userID, itemID string) *sync.Mutex {
	key := userID + "|" + itemID
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// Initialize создаёт запись первого знакомства с вопросом.
// Если запись уже есть — оставляет её без изменений.
func (s *Service) Initialize(ctx context.Context, userID, itemID string, initial Rating) (*ReviewRecord, error) {
	if userID == "" {
		return nil, common.ErrInvalidUser
	}
	if itemID == "" {
		return nil, common.ErrInvalidItem
	}

	lock := s.keyLock(userID, itemID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.Get(ctx, userID, itemID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	rec := NewRecord(userID, itemID, initial, time.Now())
	if err := s.store.Upsert(ctx, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return &rec, nil
}

// Review применяет исход одного повторения к паре (пользователь, вопрос).
// Отсутствующая запись — НЕ ошибка: прозрачно инициализируем её
// как первое знакомство и применяем исход к свежей записи.
// При отказе записи прежнее состояние в БД остаётся нетронутым.
func (s *Service) Review(ctx context.Context, userID, itemID string, correct bool, rating Rating) (*ReviewRecord, error) {
	if userID == "" {
		return nil, common.ErrInvalidUser
	}
	if itemID == "" {
		return nil, common.ErrInvalidItem
	}

	lock := s.keyLock(userID, itemID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()

	current, err := s.store.Get(ctx, userID, itemID)
	if err != nil {
		if !errors.Is(err, common.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
		// Первое знакомство: стартуем с фактора по первой оценке
		fresh := NewRecord(userID, itemID, rating, now)
		current = &fresh
	}

	updated := Advance(*current, correct, rating, now, s.maxIntervalHours)
	if err := s.store.Upsert(ctx, &updated); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"item_id":  itemID,
		"correct":  correct,
		"reps":     updated.RepetitionCount,
		"ease":     updated.EaseFactor,
		"interval": updated.IntervalHours,
	}).Debug("Запись повторения обновлена")

	return &updated, nil
}

// Due возвращает готовые к повторению записи пользователя.
func (s *Service) Due(ctx context.Context, userID string, now time.Time, limit int) ([]ReviewRecord, error) {
	records, err := s.store.Due(ctx, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return records, nil
}

// Struggling возвращает проблемные записи пользователя (ease < 2.0).
func (s *Service) Struggling(ctx context.Context, userID string, limit int) ([]ReviewRecord, error) {
	records, err := s.store.Struggling(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return records, nil
}
