// Package rewards — conditions.go оценивает условия срабатывания бонусов.
// Условия оформлены таблицей предикатов, а не растущим switch:
// новый тип условия — это добавление строки в таблицу, а не правка кода.
// Неизвестный тег трактуется как тег раздела курса и сравнивается
// с разделом вопроса; иначе условие не выполняется.
package rewards

import (
	"edquest.ru/study-engine/internal/features/equipment"
)

// condInput — всё, что нужно предикату для решения.
type condInput struct {
	ctx        AnswerContext
	difficulty int
	localHour  int // Час ответа в часовом поясе приложения
}

// conditionTable — предикаты известных условий.
var conditionTable = map[equipment.Condition]func(condInput) bool{
	equipment.CondAlways: func(condInput) bool {
		return true
	},
	equipment.CondFirstAttempt: func(in condInput) bool {
		return in.ctx.FirstAttempt
	},
	equipment.CondNighttime: func(in condInput) bool {
		// Ночь: [22,24) и [0,6]
		return in.localHour >= 22 || in.localHour <= 6
	},
	equipment.CondHardQuestion: func(in condInput) bool {
		return in.difficulty >= 4
	},
	equipment.CondAfterError: func(in condInput) bool {
		return in.ctx.AfterError
	},
	equipment.CondDailyLogin: func(in condInput) bool {
		return in.ctx.DailyLogin
	},
	equipment.CondReviewMode: func(in condInput) bool {
		return in.ctx.ReviewMode
	},
}

// conditionHolds сообщает, действует ли условие предмета для данного ответа.
func conditionHolds(cond equipment.Condition, in condInput) bool {
	if pred, ok := conditionTable[cond]; ok {
		return pred(in)
	}
	// Неизвестный тег — это тег раздела курса
	return cond != "" && string(cond) == in.ctx.SectionType
}

// conditionalBoost суммирует значения УСЛОВНЫХ бонусов типа t,
// чьи условия выполняются для данного ответа. Безусловные записи
// (always) сюда не входят — они учитываются агрегированной суммой.
func conditionalBoost(vector equipment.BonusVector, t equipment.BonusType, in condInput) float64 {
	var sum float64
	for _, item := range vector.Items {
		if item.BonusType != t || item.BonusCondition == equipment.CondAlways {
			continue
		}
		if conditionHolds(item.BonusCondition, in) {
			sum += item.BonusValue
		}
	}
	return sum
}
