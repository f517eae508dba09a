// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях движка.
// Таксономия из трёх групп: временные (можно повторить событие целиком),
// восстановимые (запись не найдена — трактуем как первое знакомство)
// и невалидный ввод (отклоняем до любых мутаций).
package common

import "errors"

// Временные ошибки хранилища
var (
	// ErrStoreUnavailable — хранилище недоступно (таймаут, обрыв соединения).
	// Вызывающий может повторить обработку события ответа ровно один раз.
	ErrStoreUnavailable = errors.New("хранилище временно недоступно")
)

// Восстановимые ошибки
var (
	// ErrRecordNotFound — запись не найдена в хранилище.
	// Планировщик трактует это как первое знакомство с вопросом.
	ErrRecordNotFound = errors.New("запись не найдена")
)

// Ошибки валидации ввода (неповторяемые)
var (
	// ErrInvalidDifficulty — сложность вне диапазона [1,5]
	ErrInvalidDifficulty = errors.New("сложность должна быть от 1 до 5")
	// ErrInvalidTimeBudget — бюджет времени сессии нулевой или отрицательный
	ErrInvalidTimeBudget = errors.New("бюджет времени должен быть положительным")
	// ErrInvalidAmount — некорректная сумма начисления (отрицательная)
	ErrInvalidAmount = errors.New("сумма начисления не может быть отрицательной")
	// ErrInvalidUser — пустой идентификатор пользователя
	ErrInvalidUser = errors.New("идентификатор пользователя не задан")
	// ErrInvalidItem — пустой идентификатор вопроса
	ErrInvalidItem = errors.New("идентификатор вопроса не задан")
)
