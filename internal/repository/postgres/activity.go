package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/activity-signup/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// ActivityRepository реализует repository.ActivityRepository для PostgreSQL
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository создает новый экземпляр ActivityRepository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Seed добавляет отсутствующие мероприятия вместе с начальными участниками
func (r *ActivityRepository) Seed(ctx context.Context, activities []domain.Activity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, a := range activities {
		tag, err := tx.Exec(ctx, `
			INSERT INTO activities (name, description, schedule, max_participants)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, a.Name, a.Description, a.Schedule, a.MaxParticipants)
		if err != nil {
			return fmt.Errorf("failed to seed activity %q: %w", a.Name, err)
		}

		// Мероприятие уже было в базе: его участников не трогаем
		if tag.RowsAffected() == 0 {
			continue
		}

		for _, email := range a.Participants {
			if _, err := tx.Exec(ctx,
				`INSERT INTO activity_participants (activity_name, email) VALUES ($1, $2)`,
				a.Name, email,
			); err != nil {
				return fmt.Errorf("failed to seed participant %s for %q: %w", email, a.Name, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// List возвращает все мероприятия с участниками в порядке записи
func (r *ActivityRepository) List(ctx context.Context) ([]*domain.Activity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, description, schedule, max_participants
		FROM activities
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	byName := make(map[string]*domain.Activity)
	for rows.Next() {
		a := &domain.Activity{Participants: []string{}}
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, err
		}
		activities = append(activities, a)
		byName[a.Name] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.Query(ctx, `
		SELECT activity_name, email
		FROM activity_participants
		ORDER BY activity_name, id
	`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, err
		}
		if a, ok := byName[name]; ok {
			a.Participants = append(a.Participants, email)
		}
	}

	return activities, prows.Err()
}

// GetByName получает мероприятие по названию
func (r *ActivityRepository) GetByName(ctx context.Context, name string) (*domain.Activity, error) {
	a := &domain.Activity{Participants: []string{}}
	err := r.db.QueryRow(ctx, `
		SELECT name, description, schedule, max_participants
		FROM activities
		WHERE name = $1
	`, name).Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT email
		FROM activity_participants
		WHERE activity_name = $1
		ORDER BY id
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		a.Participants = append(a.Participants, email)
	}

	return a, rows.Err()
}

// AddParticipant добавляет участника. Уникальность обеспечивает ограничение UNIQUE
func (r *ActivityRepository) AddParticipant(ctx context.Context, name, email string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO activity_participants (activity_name, email) VALUES ($1, $2)`,
		name, email,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case codeUniqueViolation:
				return domain.ErrAlreadySignedUp
			case codeForeignKeyViolation:
				return domain.ErrActivityNotFound
			}
		}
		return err
	}

	return nil
}

// RemoveParticipant удаляет участника из мероприятия
func (r *ActivityRepository) RemoveParticipant(ctx context.Context, name, email string) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM activity_participants WHERE activity_name = $1 AND email = $2`,
		name, email,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() > 0 {
		return nil
	}

	// Ничего не удалено: различаем отсутствие мероприятия и отсутствие участника
	exists, err := r.exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrActivityNotFound
	}
	return domain.ErrParticipantNotFound
}

func (r *ActivityRepository) exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM activities WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
