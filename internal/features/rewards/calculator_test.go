package rewards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edquest.ru/study-engine/internal/common"
	"edquest.ru/study-engine/internal/features/equipment"
)

// neverCrit — источник, при котором розыгрыши никогда не проходят.
func neverCrit() float64 { return 0.999999 }

// alwaysHit — источник, при котором любой положительный шанс срабатывает.
func alwaysHit() float64 { return 0 }

// дневное время, чтобы условие nighttime не срабатывало случайно
var noonUTC = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newCalc() *Calculator {
	return NewCalculator(5, 25, "UTC")
}

func correctEvent(difficulty int) AnswerEvent {
	return AnswerEvent{
		UserID:     "u1",
		ItemID:     "q1",
		IsCorrect:  true,
		Difficulty: difficulty,
		AnsweredAt: noonUTC,
	}
}

func TestIncorrectAnswerGivesNothing(t *testing.T) {
	event := correctEvent(3)
	event.IsCorrect = false

	reward, err := newCalc().Compute(event, 10, equipment.BonusVector{}, neverCrit)
	require.NoError(t, err)

	assert.Equal(t, Reward{}, reward)
}

func TestInvalidDifficultyRejected(t *testing.T) {
	for _, d := range []int{0, -1, 6, 100} {
		event := correctEvent(3)
		event.Difficulty = d
		_, err := newCalc().Compute(event, 0, equipment.BonusVector{}, neverCrit)
		assert.ErrorIs(t, err, common.ErrInvalidDifficulty, "difficulty=%d", d)
	}
}

func TestBaseRewardByDifficulty(t *testing.T) {
	tests := []struct {
		difficulty int
		wantXP     int
		wantGold   int
	}{
		{1, 10, 7},
		{2, 12, 9},
		{3, 14, 11},
		{4, 16, 13},
		{5, 18, 15},
	}

	for _, tt := range tests {
		reward, err := newCalc().Compute(correctEvent(tt.difficulty), 0, equipment.BonusVector{}, neverCrit)
		require.NoError(t, err)
		assert.Equal(t, tt.wantXP, reward.XP, "difficulty=%d", tt.difficulty)
		assert.Equal(t, tt.wantGold, reward.Gold, "difficulty=%d", tt.difficulty)
		assert.False(t, reward.CriticalHit)
	}
}

// Стрик 7, сложность 3, без экипировки: XP = 10+4+7 = 21, золото = 5+6 = 11.
func TestStreakBonus(t *testing.T) {
	reward, err := newCalc().Compute(correctEvent(3), 7, equipment.BonusVector{}, neverCrit)
	require.NoError(t, err)

	assert.Equal(t, 21, reward.XP)
	assert.Equal(t, 11, reward.Gold)
}

func TestStreakBonusBelowThresholdIgnored(t *testing.T) {
	reward, err := newCalc().Compute(correctEvent(3), 4, equipment.BonusVector{}, neverCrit)
	require.NoError(t, err)

	assert.Equal(t, 14, reward.XP)
}

func TestStreakBonusCapped(t *testing.T) {
	reward, err := newCalc().Compute(correctEvent(3), 120, equipment.BonusVector{}, neverCrit)
	require.NoError(t, err)

	// 10 + 4 + cap(25)
	assert.Equal(t, 39, reward.XP)
}

func TestFirstAttemptBonus(t *testing.T) {
	event := correctEvent(1)
	event.Context.FirstAttempt = true

	reward, err := newCalc().Compute(event, 0, equipment.BonusVector{}, neverCrit)
	require.NoError(t, err)

	assert.Equal(t, 15, reward.XP)
}

// Предмет {xp_boost, 0.2, always}, сложность 1, без стрика: 10 * 1.2 = 12.
func TestUnconditionalXPBoost(t *testing.T) {
	vector := equipment.Aggregate([]EquippedItem{
		{ItemCode: "ring", BonusType: equipment.BonusXP, BonusValue: 0.2, BonusCondition: equipment.CondAlways},
	})

	reward, err := newCalc().Compute(correctEvent(1), 0, vector, neverCrit)
	require.NoError(t, err)

	assert.Equal(t, 12, reward.XP)
}

// Форсированный крит (random()=0, шанс 0.1) удваивает опыт ДО множителей.
func TestCriticalHitDoublesBeforeMultiplier(t *testing.T) {
	vector := equipment.Aggregate([]EquippedItem{
		{ItemCode: "charm", BonusType: equipment.BonusCritical, BonusValue: 0.1, BonusCondition: equipment.CondAlways},
		{ItemCode: "ring", BonusType: equipment.BonusXP, BonusValue: 0.5, BonusCondition: equipment.CondAlways},
	})

	reward, err := newCalc().Compute(correctEvent(1), 0, vector, alwaysHit)
	require.NoError(t, err)

	// (10 * 2) * 1.5 = 30 — а не (10 * 1.5) * 2 после округления
	assert.True(t, reward.CriticalHit)
	assert.Equal(t, 30, reward.XP)
}

func TestCriticalHitMissed(t *testing.T) {
	vector := equipment.Aggregate([]EquippedItem{
		{ItemCode: "charm", BonusType: equipment.BonusCritical, BonusValue: 0.1, BonusCondition: equipment.CondAlways},
	})

	reward, err := newCalc().Compute(correctEvent(1), 0, vector, neverCrit)
	require.NoError(t, err)

	assert.False(t, reward.CriticalHit)
	assert.Equal(t, 10, reward.XP)
}

func TestConditionalBoosts(t *testing.T) {
	tests := []struct {
		name      string
		condition equipment.Condition
		mutate    func(*AnswerEvent)
		wantXP    int
	}{
		{
			name:      "hard_questions срабатывает на сложности 4",
			condition: equipment.CondHardQuestion,
			mutate:    func(e *AnswerEvent) { e.Difficulty = 4 },
			wantXP:    24, // 16 * 1.5
		},
		{
			name:      "hard_questions молчит на сложности 3",
			condition: equipment.CondHardQuestion,
			mutate:    func(e *AnswerEvent) { e.Difficulty = 3 },
			wantXP:    14,
		},
		{
			name:      "first_attempt срабатывает по контексту",
			condition: equipment.CondFirstAttempt,
			mutate:    func(e *AnswerEvent) { e.Difficulty = 1; e.Context.FirstAttempt = true },
			wantXP:    23, // (10+5) * 1.5 → 22.5 → 23
		},
		{
			name:      "after_error срабатывает по контексту",
			condition: equipment.CondAfterError,
			mutate:    func(e *AnswerEvent) { e.Difficulty = 1; e.Context.AfterError = true },
			wantXP:    15,
		},
		{
			name:      "nighttime срабатывает в 23:00",
			condition: equipment.CondNighttime,
			mutate: func(e *AnswerEvent) {
				e.Difficulty = 1
				e.AnsweredAt = time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
			},
			wantXP: 15,
		},
		{
			name:      "nighttime срабатывает в 6 утра",
			condition: equipment.CondNighttime,
			mutate: func(e *AnswerEvent) {
				e.Difficulty = 1
				e.AnsweredAt = time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC)
			},
			wantXP: 15,
		},
		{
			name:      "nighttime молчит днём",
			condition: equipment.CondNighttime,
			mutate:    func(e *AnswerEvent) { e.Difficulty = 1 },
			wantXP:    10,
		},
		{
			name:      "review_mode срабатывает по контексту",
			condition: equipment.CondReviewMode,
			mutate:    func(e *AnswerEvent) { e.Difficulty = 1; e.Context.ReviewMode = true },
			wantXP:    15,
		},
		{
			name:      "daily_login срабатывает по контексту",
			condition: equipment.CondDailyLogin,
			mutate:    func(e *AnswerEvent) { e.Difficulty = 1; e.Context.DailyLogin = true },
			wantXP:    15,
		},
		{
			name:      "тег раздела сравнивается с разделом вопроса",
			condition: equipment.Condition("grammar"),
			mutate:    func(e *AnswerEvent) { e.Difficulty = 1; e.Context.SectionType = "grammar" },
			wantXP:    15,
		},
		{
			name:      "чужой тег раздела молчит",
			condition: equipment.Condition("grammar"),
			mutate:    func(e *AnswerEvent) { e.Difficulty = 1; e.Context.SectionType = "vocab" },
			wantXP:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vector := equipment.Aggregate([]EquippedItem{
				{ItemCode: "x", BonusType: equipment.BonusXP, BonusValue: 0.5, BonusCondition: tt.condition},
			})

			event := correctEvent(3)
			tt.mutate(&event)

			reward, err := newCalc().Compute(event, 0, vector, neverCrit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantXP, reward.XP)
		})
	}
}

func TestPerfectScoreGold(t *testing.T) {
	event := correctEvent(2)
	event.Context.PerfectScore = true

	reward, err := newCalc().Compute(event, 0, equipment.BonusVector{}, neverCrit)
	require.NoError(t, err)

	// 5 + 2*2 + 100
	assert.Equal(t, 109, reward.Gold)
}

func TestGoldBoostAppliesOnlyToGold(t *testing.T) {
	vector := equipment.Aggregate([]EquippedItem{
		{ItemCode: "boots", BonusType: equipment.BonusGold, BonusValue: 0.5, BonusCondition: equipment.CondAlways},
	})

	reward, err := newCalc().Compute(correctEvent(1), 0, vector, neverCrit)
	require.NoError(t, err)

	assert.Equal(t, 10, reward.XP)
	assert.Equal(t, 11, reward.Gold) // 7 * 1.5 → 10.5 → 11
}

func TestRewardNeverNegative(t *testing.T) {
	for d := 1; d <= 5; d++ {
		for _, correct := range []bool{true, false} {
			event := correctEvent(d)
			event.IsCorrect = correct
			reward, err := newCalc().Compute(event, 0, equipment.BonusVector{}, neverCrit)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, reward.XP, 0)
			assert.GreaterOrEqual(t, reward.Gold, 0)
		}
	}
}

func TestRollHint(t *testing.T) {
	calc := newCalc()

	vector := equipment.Aggregate([]EquippedItem{
		{ItemCode: "lens", BonusType: equipment.BonusHint, BonusValue: 0.3, BonusCondition: equipment.CondAlways},
	})

	assert.True(t, calc.RollHint(vector, alwaysHit))
	assert.False(t, calc.RollHint(vector, neverCrit))
	// Без hint_chance подсказка не разыгрывается даже при random()=0
	assert.False(t, calc.RollHint(equipment.BonusVector{}, alwaysHit))
}

// EquippedItem — локальный алиас для краткости тестов.
type EquippedItem = equipment.EquippedItem
