// Package srs реализует интервальное повторение (spaced repetition).
// models.go описывает запись повторения и константы алгоритма.
package srs

import "time"

// Rating — оценка сложности припоминания при ответе.
type Rating string

// Оценки припоминания
const (
	RatingHard Rating = "hard"
	RatingGood Rating = "good"
	RatingEasy Rating = "easy"
)

// Константы алгоритма
const (
	// MinEaseFactor — нижняя граница фактора лёгкости.
	// Терминальная: фактор клампится, а не падает с ошибкой.
	MinEaseFactor = 1.3
	// StrugglingEase — порог «проблемного» вопроса
	StrugglingEase = 2.0
	// Корректировки фактора лёгкости при верном ответе
	easeHardPenalty = 0.15
	easeEasyBonus   = 0.1
	// Штраф фактора при неверном ответе
	easeFailPenalty = 0.2
)

// Schedule — фиксированная лестница интервалов в часах:
// 1ч, 4ч, 1д, 3д, 1нед, 2нед, 1мес, 3мес, 6мес.
// Индексируется repetition_count; после её исчерпания интервал
// растёт экспоненциально как ceil(prev * ease).
var Schedule = []int{1, 4, 24, 72, 168, 336, 720, 2160, 4320}

// initialEase — стартовый фактор лёгкости по первой оценке сложности.
var initialEase = map[Rating]float64{
	RatingHard: 1.3,
	RatingGood: 2.5,
	RatingEasy: 2.8,
}

// ReviewRecord — состояние повторения пары (пользователь, вопрос).
// Ровно одна запись на пару; создаётся при первом знакомстве,
// никогда не удаляется, пока существует вопрос.
type ReviewRecord struct {
	ID              int64     `db:"id"`
	UserID          string    `db:"user_id"`
	ItemID          string    `db:"item_id"`
	RepetitionCount int       `db:"repetition_count"`
	EaseFactor      float64   `db:"ease_factor"`
	IntervalHours   int       `db:"interval_hours"`
	NextReviewAt    time.Time `db:"next_review_at"`
	LastReviewAt    time.Time `db:"last_review_at"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// RatingForDifficulty выводит оценку припоминания из сложности вопроса [1,5].
// Используется пайплайном: событие ответа несёт числовую сложность,
// алгоритм работает с тремя оценками.
func RatingForDifficulty(difficulty int) Rating {
	switch {
	case difficulty >= 4:
		return RatingHard
	case difficulty <= 2:
		return RatingEasy
	default:
		return RatingGood
	}
}
