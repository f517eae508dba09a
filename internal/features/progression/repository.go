// Package progression — repository.go выполняет операции с таблицами
// profiles и reward_log. Применение награды и запись в журнал идут
// в одной транзакции БД: либо произойдёт всё, либо ничего.
package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"edquest.ru/study-engine/internal/common"
)

const profileColumns = `user_id, level, xp, gold, current_streak, max_streak,
	       total_questions, total_correct, last_answer_at, reminder_sent_today,
	       created_at, updated_at`

// Repository предоставляет методы для работы с профилями прогресса.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий профилей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create создаёт начальный профиль (уровень 1, нулевые счётчики).
func (r *Repository) Create(ctx context.Context, userID string) error {
	query := `
		INSERT INTO profiles (user_id, level, xp, gold, current_streak, max_streak,
		                      total_questions, total_correct)
		VALUES ($1, 1, 0, 0, 0, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("ошибка создания профиля: %w", err)
	}
	return nil
}

// Get возвращает профиль пользователя.
// Если профиля нет — возвращает common.ErrRecordNotFound.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrRecordNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return p, nil
}

// Apply атомарно применяет награду и исход ответа к профилю.
// Блокировка строки FOR UPDATE сериализует конкурентные события
// одного пользователя: чтение-изменение-запись всегда целиком.
func (r *Repository) Apply(ctx context.Context, userID string, xpGain, goldGain int64, outcome Outcome, critical bool, now time.Time) (*ApplyResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Читаем профиль с блокировкой строки
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1 FOR UPDATE`
	current, err := scanProfile(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrRecordNotFound
		}
		return nil, fmt.Errorf("ошибка чтения профиля: %w", err)
	}

	updated, leveledUp := applyReward(*current, xpGain, goldGain, outcome, now)

	// Записываем профиль одним UPDATE — частичных состояний не бывает
	_, err = tx.Exec(ctx, `
		UPDATE profiles
		SET level = $2, xp = $3, gold = $4, current_streak = $5, max_streak = $6,
		    total_questions = $7, total_correct = $8, last_answer_at = $9,
		    updated_at = NOW()
		WHERE user_id = $1
	`, userID, updated.Level, updated.XP, updated.Gold, updated.CurrentStreak,
		updated.MaxStreak, updated.TotalQuestions, updated.TotalCorrect, updated.LastAnswerAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления профиля: %w", err)
	}

	// Журнал начислений — в той же транзакции
	_, err = tx.Exec(ctx, `
		INSERT INTO reward_log (user_id, xp, gold, critical)
		VALUES ($1, $2, $3, $4)
	`, userID, xpGain, goldGain, critical)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи в журнал начислений: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return &ApplyResult{
		Profile:   updated,
		LeveledUp: leveledUp,
		NewStreak: updated.CurrentStreak,
	}, nil
}

// MarkReminderSent помечает, что напоминание уже отправлено сегодня.
func (r *Repository) MarkReminderSent(ctx context.Context, userID string) error {
	query := `UPDATE profiles SET reminder_sent_today = TRUE WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// ResetDailyFlags сбрасывает дневные флаги у всех профилей.
// Вызывается кроном в полночь локального времени приложения.
func (r *Repository) ResetDailyFlags(ctx context.Context) error {
	query := `UPDATE profiles SET reminder_sent_today = FALSE, updated_at = NOW()`
	_, err := r.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка сброса дневных флагов: %w", err)
	}
	return nil
}

// ListReminderCandidates возвращает профили, которым сегодня ещё
// не отправляли напоминание. Используется часовым сканом напоминаний.
func (r *Repository) ListReminderCandidates(ctx context.Context) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE NOT reminder_sent_today`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения профилей: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

// rowScanner покрывает pgx.Row и pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProfile читает профиль из строки результата.
func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.UserID, &p.Level, &p.XP, &p.Gold, &p.CurrentStreak, &p.MaxStreak,
		&p.TotalQuestions, &p.TotalCorrect, &p.LastAnswerAt, &p.ReminderSentToday,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
