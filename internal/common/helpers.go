// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: работа с часовым поясом приложения, русская плюрализация
// для текстов рекомендаций.
package common

import (
	"math"
	"time"
)

// AppLocation возвращает часовой пояс приложения по имени из конфигурации.
// Если загрузить не удалось — используем UTC+3 вручную (как у крона).
func AppLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// LocalHour возвращает час времени t в часовом поясе приложения.
// Используется для условия nighttime у бонусов экипировки.
func LocalHour(t time.Time, tzName string) int {
	return t.In(AppLocation(tzName)).Hour()
}

// StartOfDay возвращает полночь дня времени t в часовом поясе приложения.
// Нужно для условия daily_login: первый ответ за календарный день.
func StartOfDay(t time.Time, tzName string) time.Time {
	lt := t.In(AppLocation(tzName))
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())
}

// PluralizeQuestions возвращает правильную форму слова «вопрос» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "вопрос" (1, 21, 31, ...)
//   - n%10 в [2,4] И n%100 НЕ в [12,14] → "вопроса" (2, 3, 4, 22, ...)
//   - Остальные случаи → "вопросов" (0, 5-20, 25-30, ...)
func PluralizeQuestions(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "вопрос"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "вопроса"
	}
	return "вопросов"
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
func PluralizeDays(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "день"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "дня"
	}
	return "дней"
}
