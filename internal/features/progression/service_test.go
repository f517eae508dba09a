package progression

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edquest.ru/study-engine/internal/common"
)

// fakeStore — профили в памяти с теми же контрактами, что у репозитория.
type fakeStore struct {
	profiles map[string]*Profile

	failApply  error // Если не nil — Apply возвращает эту ошибку
	applyCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]*Profile)}
}

func (f *fakeStore) Create(_ context.Context, userID string) error {
	if _, ok := f.profiles[userID]; !ok {
		f.profiles[userID] = &Profile{UserID: userID, Level: 1}
	}
	return nil
}

func (f *fakeStore) Get(_ context.Context, userID string) (*Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) Apply(_ context.Context, userID string, xpGain, goldGain int64, outcome Outcome, _ bool, now time.Time) (*ApplyResult, error) {
	f.applyCalls++
	if f.failApply != nil {
		return nil, f.failApply
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	updated, leveledUp := applyReward(*p, xpGain, goldGain, outcome, now)
	*p = updated
	return &ApplyResult{Profile: updated, LeveledUp: leveledUp, NewStreak: updated.CurrentStreak}, nil
}

func TestGetCreatesProfileOnFirstCall(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	profile, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, 1, profile.Level)
	assert.Zero(t, profile.XP)
}

func TestGetRejectsEmptyUser(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrInvalidUser)
}

func TestApplyCorrectAnswer(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	result, err := svc.Apply(context.Background(), "u1", 21, 11, OutcomeCorrect, false)
	require.NoError(t, err)

	assert.Equal(t, int64(21), result.Profile.XP)
	assert.Equal(t, int64(11), result.Profile.Gold)
	assert.Equal(t, 1, result.NewStreak)
	assert.False(t, result.LeveledUp)
}

func TestApplyRejectsNegativeAmounts(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Apply(context.Background(), "u1", -5, 0, OutcomeCorrect, false)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = svc.Apply(context.Background(), "u1", 0, -1, OutcomeCorrect, false)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

// Нулевые начисления без исхода не доходят до записи в хранилище.
func TestApplyNoopWithoutOutcome(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	result, err := svc.Apply(context.Background(), "u1", 0, 0, OutcomeNone, false)
	require.NoError(t, err)

	assert.False(t, result.LeveledUp)
	assert.Zero(t, store.applyCalls)
}

// Неверный ответ с наградой {0,0} — НЕ no-op: стрик сбрасывается.
func TestApplyIncorrectAnswerIsNotNoop(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Apply(ctx, "u1", 10, 5, OutcomeCorrect, false)
		require.NoError(t, err)
	}

	result, err := svc.Apply(ctx, "u1", 0, 0, OutcomeIncorrect, false)
	require.NoError(t, err)

	assert.Zero(t, result.NewStreak)
	assert.Equal(t, 3, result.Profile.MaxStreak)
	assert.Equal(t, 4, result.Profile.TotalQuestions)
}

func TestApplyLevelUp(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	result, err := svc.Apply(context.Background(), "u1", 1250, 0, OutcomeCorrect, false)
	require.NoError(t, err)

	assert.True(t, result.LeveledUp)
	assert.Equal(t, 2, result.Profile.Level)
}

// Отказ хранилища оборачивается в ErrStoreUnavailable, профиль не мутирует.
func TestApplyStoreFailureLeavesProfileIntact(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "u1", 10, 5, OutcomeCorrect, false)
	require.NoError(t, err)

	store.failApply = errors.New("connection reset")
	_, err = svc.Apply(ctx, "u1", 10, 5, OutcomeCorrect, false)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	profile, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), profile.XP)
	assert.Equal(t, 1, profile.CurrentStreak)
}
