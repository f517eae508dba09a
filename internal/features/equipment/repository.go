// Package equipment — repository.go выполняет операции с таблицей equipped_items.
package equipment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с таблицей equipped_items.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий инвентаря.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListEquipped возвращает все экипированные предметы пользователя.
func (r *Repository) ListEquipped(ctx context.Context, userID string) ([]EquippedItem, error) {
	query := `
		SELECT id, user_id, item_code, COALESCE(bonus_type, ''),
		       COALESCE(bonus_value, 0), bonus_condition, created_at
		FROM equipped_items
		WHERE user_id = $1 AND equipped
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения экипировки: %w", err)
	}
	defer rows.Close()

	var items []EquippedItem
	for rows.Next() {
		var it EquippedItem
		err := rows.Scan(
			&it.ID, &it.UserID, &it.ItemCode,
			&it.BonusType, &it.BonusValue, &it.BonusCondition, &it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования предмета: %w", err)
		}
		items = append(items, it)
	}
	return items, nil
}

// Equip добавляет предмет в экипировку пользователя.
func (r *Repository) Equip(ctx context.Context, item EquippedItem) error {
	query := `
		INSERT INTO equipped_items (user_id, item_code, bonus_type, bonus_value, bonus_condition, equipped)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, TRUE)
	`
	_, err := r.db.Exec(ctx, query,
		item.UserID, item.ItemCode, string(item.BonusType), item.BonusValue, string(item.BonusCondition),
	)
	if err != nil {
		return fmt.Errorf("ошибка экипировки предмета: %w", err)
	}
	return nil
}

// Unequip снимает предмет. Запись остаётся в инвентаре с equipped = FALSE.
func (r *Repository) Unequip(ctx context.Context, userID, itemCode string) error {
	query := `
		UPDATE equipped_items
		SET equipped = FALSE
		WHERE user_id = $1 AND item_code = $2 AND equipped
	`
	_, err := r.db.Exec(ctx, query, userID, itemCode)
	if err != nil {
		return fmt.Errorf("ошибка снятия предмета: %w", err)
	}
	return nil
}
