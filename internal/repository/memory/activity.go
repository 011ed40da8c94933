package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aidar/activity-signup/internal/domain"
)

// entry хранит мероприятие вместе с собственной блокировкой
type entry struct {
	mu       sync.Mutex
	activity *domain.Activity
}

// ActivityRepository реализует repository.ActivityRepository в памяти процесса.
// Набор мероприятий фиксируется при Seed, дальше меняются только списки участников.
type ActivityRepository struct {
	seedOnce sync.Once
	entries  map[string]*entry
	order    []string
}

// NewActivityRepository создает пустой репозиторий; его нужно заполнить через Seed
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{entries: make(map[string]*entry)}
}

// Seed заполняет справочник. Повторный вызов ничего не меняет
func (r *ActivityRepository) Seed(_ context.Context, activities []domain.Activity) error {
	r.seedOnce.Do(func() {
		for i := range activities {
			a := activities[i].Clone()
			if _, ok := r.entries[a.Name]; ok {
				continue
			}
			r.entries[a.Name] = &entry{activity: a}
			r.order = append(r.order, a.Name)
		}
		sort.Strings(r.order)
	})
	return nil
}

// List возвращает копии всех мероприятий, отсортированные по названию
func (r *ActivityRepository) List(_ context.Context) ([]*domain.Activity, error) {
	activities := make([]*domain.Activity, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		e.mu.Lock()
		activities = append(activities, e.activity.Clone())
		e.mu.Unlock()
	}
	return activities, nil
}

// GetByName получает копию мероприятия по названию
func (r *ActivityRepository) GetByName(_ context.Context, name string) (*domain.Activity, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, domain.ErrActivityNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activity.Clone(), nil
}

// AddParticipant добавляет email в конец списка участников
func (r *ActivityRepository) AddParticipant(_ context.Context, name, email string) error {
	e, ok := r.entries[name]
	if !ok {
		return domain.ErrActivityNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activity.HasParticipant(email) {
		return domain.ErrAlreadySignedUp
	}
	e.activity.Participants = append(e.activity.Participants, email)
	return nil
}

// RemoveParticipant удаляет email из списка, сохраняя порядок остальных
func (r *ActivityRepository) RemoveParticipant(_ context.Context, name, email string) error {
	e, ok := r.entries[name]
	if !ok {
		return domain.ErrActivityNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i, p := range e.activity.Participants {
		if p == email {
			e.activity.Participants = append(e.activity.Participants[:i], e.activity.Participants[i+1:]...)
			return nil
		}
	}
	return domain.ErrParticipantNotFound
}
