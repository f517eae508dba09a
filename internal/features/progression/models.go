// Package progression ведёт профиль прогресса: опыт, золото, уровень, стрики.
// models.go описывает профиль и чистую логику применения награды.
package progression

import "time"

// XPPerLevel — опыт на один уровень. Уровень всегда равен xp/1000 + 1.
const XPPerLevel = 1000

// Outcome — исход ответа, который фиксирует леджер.
type Outcome int

// Исходы ответа
const (
	OutcomeNone      Outcome = iota // Нет события ответа (чистая корректировка)
	OutcomeCorrect                  // Верный ответ: стрик растёт
	OutcomeIncorrect                // Неверный ответ: стрик сбрасывается
)

// Profile представляет профиль прогресса пользователя.
// Инварианты: level == xp/1000+1; max_streak никогда не убывает;
// total_correct <= total_questions. Мутируется ТОЛЬКО леджером,
// ровно один раз на событие ответа, атомарно.
type Profile struct {
	UserID            string     `db:"user_id"`
	Level             int        `db:"level"`
	XP                int64      `db:"xp"`
	Gold              int64      `db:"gold"`
	CurrentStreak     int        `db:"current_streak"`
	MaxStreak         int        `db:"max_streak"`
	TotalQuestions    int        `db:"total_questions"`
	TotalCorrect      int        `db:"total_correct"`
	LastAnswerAt      *time.Time `db:"last_answer_at"`
	ReminderSentToday bool       `db:"reminder_sent_today"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// ApplyResult — итог применения награды к профилю.
type ApplyResult struct {
	Profile   Profile
	LeveledUp bool
	NewStreak int
}

// LevelForXP возвращает уровень для количества опыта.
func LevelForXP(xp int64) int {
	return int(xp/XPPerLevel) + 1
}

// applyReward применяет награду и исход к профилю (чистая функция).
// Вызывается репозиторием между SELECT ... FOR UPDATE и UPDATE,
// поэтому конкурентные события одного пользователя сериализуются
// блокировкой строки.
func applyReward(p Profile, xpGain, goldGain int64, outcome Outcome, now time.Time) (Profile, bool) {
	p.XP += xpGain
	p.Gold += goldGain

	newLevel := LevelForXP(p.XP)
	leveledUp := newLevel > p.Level
	p.Level = newLevel

	switch outcome {
	case OutcomeCorrect:
		p.CurrentStreak++
		if p.CurrentStreak > p.MaxStreak {
			p.MaxStreak = p.CurrentStreak
		}
		p.TotalQuestions++
		p.TotalCorrect++
		p.LastAnswerAt = &now
	case OutcomeIncorrect:
		// Сброс стрика; max_streak не трогаем
		p.CurrentStreak = 0
		p.TotalQuestions++
		p.LastAnswerAt = &now
	}

	return p, leveledUp
}
