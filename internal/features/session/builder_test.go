package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edquest.ru/study-engine/internal/common"
	"edquest.ru/study-engine/internal/features/srs"
)

// fakeScheduler отдаёт заранее заданные списки записей.
type fakeScheduler struct {
	due        []srs.ReviewRecord
	struggling []srs.ReviewRecord
	err        error
}

func (f *fakeScheduler) Due(_ context.Context, _ string, _ time.Time, limit int) ([]srs.ReviewRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeScheduler) Struggling(_ context.Context, _ string, limit int) ([]srs.ReviewRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.struggling) > limit {
		return f.struggling[:limit], nil
	}
	return f.struggling, nil
}

func records(ids ...string) []srs.ReviewRecord {
	recs := make([]srs.ReviewRecord, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, srs.ReviewRecord{UserID: "u1", ItemID: id})
	}
	return recs
}

func TestBuildValidatesInput(t *testing.T) {
	builder := NewBuilder(&fakeScheduler{}, 1.5)
	ctx := context.Background()

	_, err := builder.Build(ctx, "", 15)
	assert.ErrorIs(t, err, common.ErrInvalidUser)

	_, err = builder.Build(ctx, "u1", 0)
	assert.ErrorIs(t, err, common.ErrInvalidTimeBudget)

	_, err = builder.Build(ctx, "u1", -10)
	assert.ErrorIs(t, err, common.ErrInvalidTimeBudget)
}

// Готовые к повторению идут первыми, проблемные добавляются без дублей.
func TestBuildQueueOrderAndDedup(t *testing.T) {
	sched := &fakeScheduler{
		due:        records("q1", "q2", "q3"),
		struggling: records("q2", "q4"),
	}
	builder := NewBuilder(sched, 1.5)

	session, err := builder.Build(context.Background(), "u1", 30)
	require.NoError(t, err)

	assert.Equal(t, []string{"q1", "q2", "q3", "q4"}, session.Queue)
	assert.Equal(t, 3, session.DueCount)
	assert.Equal(t, 2, session.StrugglingCount)
}

// Бюджет 10 минут при полутора минутах на вопрос — 6 вопросов.
func TestBuildTruncatesToTimeBudget(t *testing.T) {
	sched := &fakeScheduler{
		due: records("q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8"),
	}
	builder := NewBuilder(sched, 1.5)

	session, err := builder.Build(context.Background(), "u1", 10)
	require.NoError(t, err)

	assert.Equal(t, 6, session.EstimatedQuestions)
	assert.Equal(t, []string{"q1", "q2", "q3", "q4", "q5", "q6"}, session.Queue)
	// DueCount отражает всю очередь повторения, не обрезку
	assert.Equal(t, 8, session.DueCount)
}

func TestBuildEstimateFloors(t *testing.T) {
	sched := &fakeScheduler{due: records("q1", "q2", "q3", "q4")}
	builder := NewBuilder(sched, 1.5)

	// 5 / 1.5 = 3.33 → 3 вопроса
	session, err := builder.Build(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, session.EstimatedQuestions)

	// Минуты меньше оценки на один вопрос — пустая очередь, но не ошибка
	session, err = builder.Build(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.Empty(t, session.Queue)
	assert.Zero(t, session.EstimatedQuestions)
}

func TestBuildRecommendations(t *testing.T) {
	tests := []struct {
		name       string
		due        int
		struggling int
		minutes    int
		wantKinds  []RecommendationKind
	}{
		{
			name:      "заросшая очередь — предупреждение",
			due:       11,
			minutes:   60,
			wantKinds: []RecommendationKind{RecommendWarning},
		},
		{
			name:       "много проблемных — совет",
			due:        1,
			struggling: 6,
			minutes:    60,
			wantKinds:  []RecommendationKind{RecommendTip},
		},
		{
			name:      "короткая очередь — подбадривание",
			due:       2,
			minutes:   60,
			wantKinds: []RecommendationKind{RecommendEncouragement},
		},
		{
			name:       "всё сразу: предупреждение, совет и обрезанная очередь",
			due:        12,
			struggling: 7,
			minutes:    3, // 2 вопроса в очереди < 5
			wantKinds:  []RecommendationKind{RecommendWarning, RecommendTip, RecommendEncouragement},
		},
		{
			name:      "ровно на пороге — тишина",
			due:       10,
			minutes:   60,
			wantKinds: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var due, struggling []srs.ReviewRecord
			for i := 0; i < tt.due; i++ {
				due = append(due, srs.ReviewRecord{ItemID: fmt.Sprintf("d%d", i)})
			}
			for i := 0; i < tt.struggling; i++ {
				struggling = append(struggling, srs.ReviewRecord{ItemID: fmt.Sprintf("s%d", i)})
			}
			builder := NewBuilder(&fakeScheduler{due: due, struggling: struggling}, 1.5)

			session, err := builder.Build(context.Background(), "u1", tt.minutes)
			require.NoError(t, err)

			var kinds []RecommendationKind
			for _, rec := range session.Recommendations {
				kinds = append(kinds, rec.Kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestBuildSchedulerFailure(t *testing.T) {
	builder := NewBuilder(&fakeScheduler{err: errors.New("connection reset")}, 1.5)

	_, err := builder.Build(context.Background(), "u1", 15)
	assert.Error(t, err)
}
