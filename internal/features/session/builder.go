// Package session — builder.go собирает очередь занятия под бюджет времени.
// Никаких побочных эффектов: два запроса чтения к планировщику и чистая
// сборка очереди.
package session

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"edquest.ru/study-engine/internal/common"
	"edquest.ru/study-engine/internal/features/srs"
)

// Лимиты выборки и пороги рекомендаций
const (
	dueLimit        = 50 // Максимум готовых к повторению вопросов
	strugglingLimit = 20 // Максимум проблемных вопросов
	dueWarningAt    = 10 // Больше — предупреждение о заросшей очереди
	strugglingTipAt = 5  // Больше — совет о проблемных вопросах
	shortQueueAt    = 5  // Меньше — подбадривание
)

// Scheduler — запросы чтения к планировщику повторений.
type Scheduler interface {
	Due(ctx context.Context, userID string, now time.Time, limit int) ([]srs.ReviewRecord, error)
	Struggling(ctx context.Context, userID string, limit int) ([]srs.ReviewRecord, error)
}

// Builder собирает адаптивные очереди занятий.
type Builder struct {
	scheduler          Scheduler
	minutesPerQuestion float64 // Оценка времени на один вопрос
}

// NewBuilder создаёт сборщик сессий.
func NewBuilder(scheduler Scheduler, minutesPerQuestion float64) *Builder {
	return &Builder{
		scheduler:          scheduler,
		minutesPerQuestion: minutesPerQuestion,
	}
}

// Build собирает очередь занятия под бюджет времени в минутах.
//
// Готовые к повторению вопросы идут первыми (просроченные — в начале),
// затем проблемные, которых ещё нет в очереди. Очередь обрезается по
// оценке «полторы минуты на вопрос».
func (b *Builder) Build(ctx context.Context, userID string, targetMinutes int) (*StudySession, error) {
	if userID == "" {
		return nil, common.ErrInvalidUser
	}
	if targetMinutes <= 0 {
		return nil, common.ErrInvalidTimeBudget
	}

	now := time.Now()

	due, err := b.scheduler.Due(ctx, userID, now, dueLimit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки готовых вопросов: %w", err)
	}

	struggling, err := b.scheduler.Struggling(ctx, userID, strugglingLimit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки проблемных вопросов: %w", err)
	}

	// Очередь: сначала готовые, затем проблемные без дублей
	seen := make(map[string]bool, len(due))
	queue := make([]string, 0, len(due)+len(struggling))
	for _, rec := range due {
		seen[rec.ItemID] = true
		queue = append(queue, rec.ItemID)
	}
	for _, rec := range struggling {
		if seen[rec.ItemID] {
			continue
		}
		queue = append(queue, rec.ItemID)
	}

	// Сколько вопросов влезает в бюджет времени
	estimated := int(math.Floor(float64(targetMinutes) / b.minutesPerQuestion))
	if estimated > len(queue) {
		estimated = len(queue)
	}
	queue = queue[:estimated]

	session := &StudySession{
		UserID:             userID,
		Queue:              queue,
		DueCount:           len(due),
		StrugglingCount:    len(struggling),
		EstimatedQuestions: estimated,
		Recommendations:    recommendations(len(due), len(struggling), len(queue)),
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"due":        session.DueCount,
		"struggling": session.StrugglingCount,
		"queue":      len(session.Queue),
	}).Debug("Сессия собрана")

	return session, nil
}

// recommendations строит текстовые рекомендации по простым порогам.
func recommendations(dueCount, strugglingCount, queueLen int) []Recommendation {
	var recs []Recommendation

	if dueCount > dueWarningAt {
		recs = append(recs, Recommendation{
			Kind: RecommendWarning,
			Text: fmt.Sprintf("У тебя накопилось %d %s на повторение — лучше не откладывать",
				dueCount, common.PluralizeQuestions(dueCount)),
		})
	}
	if strugglingCount > strugglingTipAt {
		recs = append(recs, Recommendation{
			Kind: RecommendTip,
			Text: fmt.Sprintf("%d %s даются тяжело: пройди их короткими подходами",
				strugglingCount, common.PluralizeQuestions(strugglingCount)),
		})
	}
	if queueLen < shortQueueAt {
		recs = append(recs, Recommendation{
			Kind: RecommendEncouragement,
			Text: "Очередь почти пуста — отличная работа!",
		})
	}

	return recs
}
