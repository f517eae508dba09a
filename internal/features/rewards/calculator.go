// Package rewards — calculator.go считает награды за один ответ.
// Порядок расчёта опыта фиксирован: база → плоские бонусы →
// удвоение за крит → множители экипировки → округление.
package rewards

import (
	"math"

	log "github.com/sirupsen/logrus"

	"edquest.ru/study-engine/internal/common"
	"edquest.ru/study-engine/internal/features/equipment"
)

// Константы базовых наград
const (
	BaseXP            = 10  // Опыт за вопрос сложности 1
	XPPerDifficulty   = 2   // Прибавка опыта за каждую ступень сложности
	FirstAttemptBonus = 5   // Плоский бонус за ответ с первой попытки
	BaseGold          = 5   // Золото за вопрос (плюс 2 за ступень сложности)
	GoldPerDifficulty = 2   //
	PerfectScoreGold  = 100 // Плоский бонус золота за идеальную серию
)

// Calculator рассчитывает награды. Не делает внешних вызовов:
// единственная возможная ошибка — невалидный ввод.
type Calculator struct {
	streakThreshold int    // Стрик, с которого начисляется стрик-бонус
	streakCap       int    // Потолок стрик-бонуса
	timezone        string // Часовой пояс для условия nighttime
}

// NewCalculator создаёт калькулятор наград.
func NewCalculator(streakThreshold, streakCap int, timezone string) *Calculator {
	return &Calculator{
		streakThreshold: streakThreshold,
		streakCap:       streakCap,
		timezone:        timezone,
	}
}

// Compute считает награду за событие ответа.
//
// Параметры:
//   - event: событие ответа (сложность валидируется здесь)
//   - streak: текущий стрик пользователя ДО этого ответа
//   - bonuses: вектор бонусов экипировки
//   - rnd: источник случайности для розыгрыша крита
//
// Неверный ответ даёт ровно {0, 0}: без штрафов и отрицательных наград.
func (c *Calculator) Compute(event AnswerEvent, streak int, bonuses equipment.BonusVector, rnd Source) (Reward, error) {
	if event.Difficulty < 1 || event.Difficulty > 5 {
		return Reward{}, common.ErrInvalidDifficulty
	}

	if !event.IsCorrect {
		return Reward{}, nil
	}

	in := condInput{
		ctx:        event.Context,
		difficulty: event.Difficulty,
		localHour:  common.LocalHour(event.AnsweredAt, c.timezone),
	}

	// --- Опыт ---
	xp := float64(BaseXP + XPPerDifficulty*(event.Difficulty-1))
	if event.Context.FirstAttempt {
		xp += FirstAttemptBonus
	}
	if streak >= c.streakThreshold {
		xp += float64(min(streak, c.streakCap))
	}

	// Розыгрыш критического попадания: удваивает промежуточную сумму
	// опыта ДО применения множителей
	critChance := bonuses.Total(equipment.BonusCritical)
	critical := critChance > 0 && rnd() < critChance
	if critical {
		xp *= 2
	}

	xpMultiplier := 1.0 +
		bonuses.UnconditionalTotal(equipment.BonusXP) +
		conditionalBoost(bonuses, equipment.BonusXP, in)
	finalXP := int(math.Round(xp * xpMultiplier))

	// --- Золото ---
	gold := float64(BaseGold + GoldPerDifficulty*event.Difficulty)
	if event.Context.PerfectScore {
		gold += PerfectScoreGold
	}

	goldMultiplier := 1.0 +
		bonuses.UnconditionalTotal(equipment.BonusGold) +
		conditionalBoost(bonuses, equipment.BonusGold, in)
	finalGold := int(math.Round(gold * goldMultiplier))

	if critical {
		log.WithFields(log.Fields{
			"user_id": event.UserID,
			"item_id": event.ItemID,
			"xp":      finalXP,
		}).Debug("Критическое попадание")
	}

	return Reward{XP: finalXP, Gold: finalGold, CriticalHit: critical}, nil
}

// RollHint разыгрывает бесплатную подсказку по суммарному шансу
// hint_chance экипировки. Тот же инжектируемый источник случайности.
func (c *Calculator) RollHint(bonuses equipment.BonusVector, rnd Source) bool {
	chance := bonuses.Total(equipment.BonusHint)
	return chance > 0 && rnd() < chance
}

// min возвращает минимум из двух int.
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
