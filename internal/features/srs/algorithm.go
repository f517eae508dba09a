// Package srs — algorithm.go содержит чистую машину состояний повторения.
// Состояние характеризуется тройкой (repetition_count, ease_factor,
// interval_hours); все переходы детерминированы и не ходят в хранилище.
package srs

import (
	"math"
	"time"
)

// NewRecord создаёт запись первого знакомства с вопросом.
// Стартовый фактор лёгкости зависит от первой оценки сложности,
// первый интервал всегда 1 час.
func NewRecord(userID, itemID string, initial Rating, now time.Time) ReviewRecord {
	ease, ok := initialEase[initial]
	if !ok {
		ease = initialEase[RatingGood]
	}
	return ReviewRecord{
		UserID:          userID,
		ItemID:          itemID,
		RepetitionCount: 0,
		EaseFactor:      ease,
		IntervalHours:   Schedule[0],
		NextReviewAt:    now.Add(time.Duration(Schedule[0]) * time.Hour),
		LastReviewAt:    now,
	}
}

// Advance применяет исход одного повторения к записи.
//
// Верный ответ: repetition_count растёт, фактор лёгкости корректируется
// по оценке (hard → -0.15 с клампом, easy → +0.1, good → без изменений),
// интервал берётся из лестницы Schedule, а после её исчерпания —
// ceil(prev * ease) с верхней границей maxIntervalHours.
//
// Неверный ответ: полный сброс — repetition_count = 0, интервал 1 час,
// фактор штрафуется на 0.2 с клампом на 1.3.
func Advance(rec ReviewRecord, correct bool, rating Rating, now time.Time, maxIntervalHours int) ReviewRecord {
	if !correct {
		rec.RepetitionCount = 0
		rec.EaseFactor = math.Max(MinEaseFactor, rec.EaseFactor-easeFailPenalty)
		rec.IntervalHours = Schedule[0]
		rec.LastReviewAt = now
		rec.NextReviewAt = now.Add(time.Duration(rec.IntervalHours) * time.Hour)
		return rec
	}

	rec.RepetitionCount++

	switch rating {
	case RatingHard:
		rec.EaseFactor = math.Max(MinEaseFactor, rec.EaseFactor-easeHardPenalty)
	case RatingEasy:
		rec.EaseFactor += easeEasyBonus
	}

	if rec.RepetitionCount < len(Schedule) {
		rec.IntervalHours = Schedule[rec.RepetitionCount]
	} else {
		// Лестница исчерпана — экспоненциальный рост по фактору лёгкости
		next := int(math.Ceil(float64(rec.IntervalHours) * rec.EaseFactor))
		if next > maxIntervalHours {
			next = maxIntervalHours
		}
		rec.IntervalHours = next
	}

	rec.LastReviewAt = now
	rec.NextReviewAt = now.Add(time.Duration(rec.IntervalHours) * time.Hour)
	return rec
}

// IsDue сообщает, пора ли повторять запись.
func IsDue(rec ReviewRecord, now time.Time) bool {
	return !rec.NextReviewAt.After(now)
}

// IsStruggling сообщает, что вопрос даётся тяжело (ease < 2.0).
func IsStruggling(rec ReviewRecord) bool {
	return rec.EaseFactor < StrugglingEase
}
