package education

import (
	"context"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// Repository управляет хранением учебного прогресса.
type Repository interface {
	// RecordCompletion вставляет запись о завершении урока, если её ещё нет.
	// Возвращает created=false, если урок уже был засчитан.
	RecordCompletion(ctx context.Context, completion *LessonCompletion) (created bool, err error)

	// CountCompleted возвращает количество завершённых уроков.
	CountCompleted(ctx context.Context, userID shared.UserID) (int, error)

	// ListCompleted возвращает записи о завершённых уроках.
	ListCompleted(ctx context.Context, userID shared.UserID) ([]*LessonCompletion, error)
}
