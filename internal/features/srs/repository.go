// Package srs — repository.go выполняет операции с таблицей review_records.
package srs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"edquest.ru/study-engine/internal/common"
)

const recordColumns = `id, user_id, item_id, repetition_count, ease_factor,
	       interval_hours, next_review_at, last_review_at, created_at, updated_at`

// Repository предоставляет методы для работы с таблицей review_records.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий записей повторения.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get возвращает запись пары (пользователь, вопрос).
// Отсутствие записи — валидное состояние: common.ErrRecordNotFound,
// вызывающий трактует его как первое знакомство.
func (r *Repository) Get(ctx context.Context, userID, itemID string) (*ReviewRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM review_records WHERE user_id = $1 AND item_id = $2`
	rec, err := scanRecord(r.db.QueryRow(ctx, query, userID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrRecordNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи повторения: %w", err)
	}
	return rec, nil
}

// Upsert вставляет или обновляет запись одним запросом.
// Уникальность пары (user_id, item_id) обеспечивается ограничением БД.
func (r *Repository) Upsert(ctx context.Context, rec *ReviewRecord) error {
	query := `
		INSERT INTO review_records (user_id, item_id, repetition_count, ease_factor,
		                            interval_hours, next_review_at, last_review_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			repetition_count = EXCLUDED.repetition_count,
			ease_factor = EXCLUDED.ease_factor,
			interval_hours = EXCLUDED.interval_hours,
			next_review_at = EXCLUDED.next_review_at,
			last_review_at = EXCLUDED.last_review_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		rec.UserID, rec.ItemID, rec.RepetitionCount, rec.EaseFactor,
		rec.IntervalHours, rec.NextReviewAt, rec.LastReviewAt,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи повторения: %w", err)
	}
	return nil
}

// Due возвращает записи, готовые к повторению (next_review_at <= now),
// от самых просроченных к свежим, не больше limit штук.
func (r *Repository) Due(ctx context.Context, userID string, now time.Time, limit int) ([]ReviewRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM review_records
		WHERE user_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC
		LIMIT $3
	`
	return r.queryRecords(ctx, query, userID, now, limit)
}

// Struggling возвращает проблемные записи (ease_factor < 2.0),
// от самых тяжёлых к лёгким, не больше limit штук.
func (r *Repository) Struggling(ctx context.Context, userID string, limit int) ([]ReviewRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM review_records
		WHERE user_id = $1 AND ease_factor < $2
		ORDER BY ease_factor ASC
		LIMIT $3
	`
	return r.queryRecords(ctx, query, userID, StrugglingEase, limit)
}

// queryRecords выполняет запрос и сканирует список записей.
func (r *Repository) queryRecords(ctx context.Context, query string, args ...any) ([]ReviewRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса записей повторения: %w", err)
	}
	defer rows.Close()

	var records []ReviewRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		records = append(records, *rec)
	}
	return records, nil
}

// rowScanner покрывает pgx.Row и pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord читает запись повторения из строки результата.
func scanRecord(row rowScanner) (*ReviewRecord, error) {
	var rec ReviewRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.ItemID, &rec.RepetitionCount, &rec.EaseFactor,
		&rec.IntervalHours, &rec.NextReviewAt, &rec.LastReviewAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
