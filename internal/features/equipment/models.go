// Package equipment агрегирует бонусы экипированных предметов инвентаря.
// models.go описывает предметы и вектор бонусов.
package equipment

import "time"

// BonusType — тип бонуса предмета (открытый строковый enum).
type BonusType string

// Известные типы бонусов
const (
	BonusXP       BonusType = "xp_boost"        // Множитель опыта
	BonusGold     BonusType = "gold_boost"      // Множитель золота
	BonusHint     BonusType = "hint_chance"     // Шанс бесплатной подсказки
	BonusCritical BonusType = "critical_chance" // Шанс критического попадания
)

// Condition — условие срабатывания бонуса (открытый строковый enum).
// Помимо перечисленных значений допускаются теги разделов курса:
// такой тег сравнивается с разделом вопроса из контекста ответа.
type Condition string

// Известные условия бонусов
const (
	CondAlways       Condition = "always"         // Безусловный бонус
	CondFirstAttempt Condition = "first_attempt"  // Ответ с первой попытки
	CondNighttime    Condition = "nighttime"      // Ночное время (22:00-06:59)
	CondHardQuestion Condition = "hard_questions" // Сложность >= 4
	CondAfterError   Condition = "after_error"    // Сразу после ошибки
	CondDailyLogin   Condition = "daily_login"    // Первый ответ за день
	CondReviewMode   Condition = "review_mode"    // Режим повторения
)

// EquippedItem представляет один экипированный предмет с бонусом.
// Предметы неизменяемы в течение сессии; набор обновляется только
// через Equip/Unequip, что сбрасывает кэш вектора.
type EquippedItem struct {
	ID             int64     `db:"id"`
	UserID         string    `db:"user_id"`
	ItemCode       string    `db:"item_code"`       // Код предмета из каталога
	BonusType      BonusType `db:"bonus_type"`      // Пусто — предмет без бонуса
	BonusValue     float64   `db:"bonus_value"`     // Величина бонуса (доля, не проценты)
	BonusCondition Condition `db:"bonus_condition"` // Когда бонус действует
	CreatedAt      time.Time `db:"created_at"`
}

// BonusVector — агрегированные бонусы экипировки.
// Totals хранит сумму значений по типам, Items — исходные предметы:
// условные бонусы не сворачиваются аддитивно, их условия
// перепроверяются по контексту каждого ответа.
type BonusVector struct {
	Totals map[BonusType]float64
	Items  []EquippedItem
}

// Total возвращает суммарное значение бонуса данного типа (0, если нет).
func (v BonusVector) Total(t BonusType) float64 {
	return v.Totals[t]
}

// UnconditionalTotal возвращает сумму только безусловных бонусов типа t.
// Условные записи оцениваются отдельно по предметам.
func (v BonusVector) UnconditionalTotal(t BonusType) float64 {
	var sum float64
	for _, item := range v.Items {
		if item.BonusType == t && item.BonusCondition == CondAlways {
			sum += item.BonusValue
		}
	}
	return sum
}
