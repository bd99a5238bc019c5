// Package education содержит доменную модель учебного прогресса FinZen.
// Контент уроков живёт снаружи; здесь хранится только факт завершения.
package education

import (
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// LessonPoints - очки за завершение одного урока.
const LessonPoints = 50

// LessonCompletion представляет факт завершения урока пользователем.
// Уникально по паре (user, lesson) - урок засчитывается один раз.
type LessonCompletion struct {
	ID          int64
	UserID      shared.UserID
	LessonID    int
	QuizScore   *int
	CompletedAt time.Time
}

// NewLessonCompletionParams содержит параметры для записи о завершении.
type NewLessonCompletionParams struct {
	UserID    shared.UserID
	LessonID  int
	QuizScore *int
}

// NewLessonCompletion создаёт запись о завершении урока с валидацией.
func NewLessonCompletion(params NewLessonCompletionParams) (*LessonCompletion, error) {
	if !params.UserID.IsValid() {
		return nil, shared.NewDomainError("education", "NewLessonCompletion", shared.ErrInvalidID, "user ID must be positive")
	}
	if params.LessonID <= 0 {
		return nil, shared.NewDomainError("education", "NewLessonCompletion", shared.ErrInvalidID, "lesson ID must be positive")
	}
	if params.QuizScore != nil && (*params.QuizScore < 0 || *params.QuizScore > 100) {
		return nil, shared.NewDomainError("education", "NewLessonCompletion", shared.ErrValueOutOfRange, "quiz score must be 0-100")
	}

	return &LessonCompletion{
		UserID:      params.UserID,
		LessonID:    params.LessonID,
		QuizScore:   params.QuizScore,
		CompletedAt: time.Now().UTC(),
	}, nil
}
