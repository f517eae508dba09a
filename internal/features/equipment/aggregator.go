// Package equipment — aggregator.go строит вектор бонусов из предметов.
package equipment

// Aggregate собирает вектор бонусов из набора экипированных предметов.
// Чистая функция: никаких побочных эффектов и обращений к хранилищу.
// Предметы без типа или значения бонуса просто пропускаются — это
// обычные косметические предметы, а не ошибка.
func Aggregate(items []EquippedItem) BonusVector {
	vector := BonusVector{
		Totals: make(map[BonusType]float64),
	}

	for _, item := range items {
		if item.BonusType == "" || item.BonusValue == 0 {
			continue
		}
		vector.Totals[item.BonusType] += item.BonusValue
		// Сохраняем исходный предмет: условие оценивается по контексту
		// каждого ответа, суммой его не заменить
		vector.Items = append(vector.Items, item)
	}

	return vector
}
