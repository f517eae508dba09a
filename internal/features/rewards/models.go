// Package rewards превращает событие ответа в награды (опыт и золото).
// models.go описывает событие ответа, его контекст и результат расчёта.
package rewards

import (
	"math/rand"
	"time"
)

// AnswerContext — обстоятельства ответа, влияющие на условные бонусы.
// Заполняется внешним коллаборатором «учебная сессия».
type AnswerContext struct {
	FirstAttempt bool   // Ответ дан с первой попытки
	AfterError   bool   // Предыдущий ответ был неверным
	ReviewMode   bool   // Вопрос пришёл из очереди повторения
	DailyLogin   bool   // Первый ответ за календарный день
	PerfectScore bool   // Идеальный результат серии (+100 золота)
	SectionType  string // Раздел курса (для тегов-условий)
}

// AnswerEvent — одно событие ответа. Не персистится как сущность:
// потребляется ровно один раз калькулятором наград и планировщиком.
type AnswerEvent struct {
	UserID         string
	ItemID         string
	IsCorrect      bool
	Difficulty     int // 1..5
	ResponseTimeMs int
	AnsweredAt     time.Time
	Context        AnswerContext
}

// Reward — результат расчёта наград за один ответ.
// Никогда не содержит отрицательных значений.
type Reward struct {
	XP          int
	Gold        int
	CriticalHit bool
}

// Source — инжектируемый источник случайности, равномерный в [0,1).
// Розыгрыши критов и подсказок идут только через него — это
// позволяет тестам форсировать обе ветки детерминированно.
type Source func() float64

// DefaultSource — продакшн-источник на math/rand.
func DefaultSource() float64 {
	return rand.Float64()
}
