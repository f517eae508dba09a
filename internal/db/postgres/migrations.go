// Package postgres — migrations.go содержит встроенные SQL-миграции схемы.
// Миграции применяются последовательно по номеру через таблицу schema_migrations.
// Выполняются вручную (без зависимости golang-migrate, чтобы упростить сборку).
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// migrations — список миграций по версиям. Порядок важен.
var migrations = []string{
	// 1: профили пользователей (опыт, золото, уровень, стрики)
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id             TEXT PRIMARY KEY,
		level               INTEGER NOT NULL DEFAULT 1,
		xp                  BIGINT NOT NULL DEFAULT 0,
		gold                BIGINT NOT NULL DEFAULT 0,
		current_streak      INTEGER NOT NULL DEFAULT 0,
		max_streak          INTEGER NOT NULL DEFAULT 0,
		total_questions     INTEGER NOT NULL DEFAULT 0,
		total_correct       INTEGER NOT NULL DEFAULT 0,
		last_answer_at      TIMESTAMPTZ,
		reminder_sent_today BOOLEAN NOT NULL DEFAULT FALSE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT profiles_counters_check CHECK (total_correct <= total_questions)
	)`,

	// 2: журнал начислений — каждая применённая награда фиксируется
	// в той же транзакции, что и обновление профиля
	`CREATE TABLE IF NOT EXISTS reward_log (
		id         BIGSERIAL PRIMARY KEY,
		user_id    TEXT NOT NULL,
		xp         BIGINT NOT NULL,
		gold       BIGINT NOT NULL,
		critical   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS reward_log_user_idx ON reward_log (user_id, created_at DESC)`,

	// 3: записи интервального повторения — ровно одна на пару (user, item)
	`CREATE TABLE IF NOT EXISTS review_records (
		id               BIGSERIAL PRIMARY KEY,
		user_id          TEXT NOT NULL,
		item_id          TEXT NOT NULL,
		repetition_count INTEGER NOT NULL DEFAULT 0,
		ease_factor      DOUBLE PRECISION NOT NULL DEFAULT 2.5,
		interval_hours   INTEGER NOT NULL DEFAULT 1,
		next_review_at   TIMESTAMPTZ NOT NULL,
		last_review_at   TIMESTAMPTZ NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT review_records_pair_unique UNIQUE (user_id, item_id),
		CONSTRAINT review_records_ease_check CHECK (ease_factor >= 1.3)
	)`,
	`CREATE INDEX IF NOT EXISTS review_records_due_idx ON review_records (user_id, next_review_at)`,
	`CREATE INDEX IF NOT EXISTS review_records_ease_idx ON review_records (user_id, ease_factor)`,

	// 4: экипированные предметы инвентаря с бонусами
	`CREATE TABLE IF NOT EXISTS equipped_items (
		id              BIGSERIAL PRIMARY KEY,
		user_id         TEXT NOT NULL,
		item_code       TEXT NOT NULL,
		bonus_type      TEXT,
		bonus_value     DOUBLE PRECISION,
		bonus_condition TEXT NOT NULL DEFAULT 'always',
		equipped        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS equipped_items_user_idx ON equipped_items (user_id) WHERE equipped`,
}

// RunMigrations применяет все миграции схемы по порядку.
// Уже применённые версии пропускаются по таблице schema_migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Создаём таблицу для отслеживания миграций, если её нет
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	for i, sql := range migrations {
		version := i + 1
		if err := execMigrationSQL(ctx, pool, version, sql); err != nil {
			return fmt.Errorf("миграция %d: %w", version, err)
		}
	}

	log.WithField("count", len(migrations)).Info("Миграции применены")
	return nil
}

// execMigrationSQL выполняет один SQL-запрос миграции в транзакции.
// Если запрос упадёт — транзакция откатится автоматически.
func execMigrationSQL(ctx context.Context, pool *pgxpool.Pool, version int, sql string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	// Откатываем транзакцию, если что-то пошло не так
	defer tx.Rollback(ctx)

	// Проверяем, не была ли эта миграция уже применена
	var exists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ошибка проверки миграции: %w", err)
	}
	if exists {
		// Миграция уже применена — пропускаем
		return nil
	}

	// Выполняем SQL миграции
	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("ошибка выполнения миграции %d: %w", version, err)
	}

	// Записываем версию миграции
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version) VALUES ($1)", version,
	); err != nil {
		return fmt.Errorf("ошибка записи версии миграции: %w", err)
	}

	// Фиксируем транзакцию
	return tx.Commit(ctx)
}
