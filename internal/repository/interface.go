package repository

import (
	"context"

	"github.com/aidar/activity-signup/internal/domain"
)

// ActivityRepository определяет методы для работы со справочником мероприятий.
// Проверка и изменение списка участников атомарны в пределах одного мероприятия.
type ActivityRepository interface {
	// Seed добавляет отсутствующие мероприятия; существующие списки участников не меняются
	Seed(ctx context.Context, activities []domain.Activity) error

	// List возвращает копии всех мероприятий
	List(ctx context.Context) ([]*domain.Activity, error)

	// GetByName получает мероприятие по названию
	GetByName(ctx context.Context, name string) (*domain.Activity, error)

	// AddParticipant добавляет email в конец списка участников
	AddParticipant(ctx context.Context, name, email string) error

	// RemoveParticipant удаляет email из списка участников
	RemoveParticipant(ctx context.Context, name, email string) error
}
