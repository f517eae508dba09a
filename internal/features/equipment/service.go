// Package equipment — service.go кэширует вектор бонусов на время сессии.
// Кэш сбрасывается ЯВНО при любом изменении набора экипировки,
// а не по времени: инвентарь меняется редко, ответы приходят часто.
package equipment

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store — доступ к экипированным предметам в хранилище.
type Store interface {
	ListEquipped(ctx context.Context, userID string) ([]EquippedItem, error)
	Equip(ctx context.Context, item EquippedItem) error
	Unequip(ctx context.Context, userID, itemCode string) error
}

// Service отдаёт вектор бонусов пользователя, кэшируя его между ответами.
// Мьютекс нужен: события ответов одного пользователя могут обрабатываться
// параллельно с изменением инвентаря.
type Service struct {
	store Store

	mu      sync.RWMutex
	vectors map[string]BonusVector // Кэш векторов по userID
}

// NewService создаёт сервис экипировки.
func NewService(store Store) *Service {
	return &Service{
		store:   store,
		vectors: make(map[string]BonusVector),
	}
}

// Vector возвращает вектор бонусов пользователя.
// Сначала смотрим кэш; при промахе читаем хранилище и агрегируем.
func (s *Service) Vector(ctx context.Context, userID string) (BonusVector, error) {
	s.mu.RLock()
	vector, ok := s.vectors[userID]
	s.mu.RUnlock()
	if ok {
		return vector, nil
	}

	items, err := s.store.ListEquipped(ctx, userID)
	if err != nil {
		return BonusVector{}, fmt.Errorf("ошибка загрузки экипировки: %w", err)
	}

	vector = Aggregate(items)

	s.mu.Lock()
	s.vectors[userID] = vector
	s.mu.Unlock()

	return vector, nil
}

// Invalidate сбрасывает кэшированный вектор пользователя.
// Вызывается при любом изменении набора экипировки.
func (s *Service) Invalidate(userID string) {
	s.mu.Lock()
	delete(s.vectors, userID)
	s.mu.Unlock()
}

// Equip экипирует предмет и сбрасывает кэш вектора.
func (s *Service) Equip(ctx context.Context, item EquippedItem) error {
	if err := s.store.Equip(ctx, item); err != nil {
		return err
	}
	s.Invalidate(item.UserID)

	log.WithFields(log.Fields{
		"user_id":   item.UserID,
		"item_code": item.ItemCode,
		"bonus":     item.BonusType,
	}).Debug("Предмет экипирован")

	return nil
}

// Unequip снимает предмет и сбрасывает кэш вектора.
func (s *Service) Unequip(ctx context.Context, userID, itemCode string) error {
	if err := s.store.Unequip(ctx, userID, itemCode); err != nil {
		return err
	}
	s.Invalidate(userID)
	return nil
}
