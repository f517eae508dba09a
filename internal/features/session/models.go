// Package session строит адаптивную очередь занятия из состояния
// планировщика повторений. models.go описывает результат сборки.
package session

// RecommendationKind — вид текстовой рекомендации.
type RecommendationKind string

// Виды рекомендаций
const (
	RecommendWarning       RecommendationKind = "warning"
	RecommendTip           RecommendationKind = "tip"
	RecommendEncouragement RecommendationKind = "encouragement"
)

// Recommendation — одна текстовая рекомендация для пользователя.
type Recommendation struct {
	Kind RecommendationKind
	Text string
}

// StudySession — собранная очередь занятия.
type StudySession struct {
	UserID             string
	Queue              []string // Идентификаторы вопросов, просроченные первыми
	DueCount           int      // Сколько вопросов готово к повторению
	StrugglingCount    int      // Сколько проблемных вопросов
	EstimatedQuestions int      // Сколько вопросов влезает в бюджет времени
	Recommendations    []Recommendation
}
