package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/aidar/activity-signup/internal/domain"
)

// maxTxRetries ограничивает число повторов оптимистичной транзакции при записи
const maxTxRetries = 100

// ActivityRepository реализует repository.ActivityRepository поверх Redis.
//
// Раскладка ключей:
//
//	<prefix>:names                          SET названий мероприятий
//	<prefix>:activity:<name>                HASH description, schedule, max_participants
//	<prefix>:activity:<name>:participants   LIST email в порядке записи
//
// В ключах ":" и "%" в названии экранируются как %3A и %25.
type ActivityRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewActivityRepository создает новый экземпляр ActivityRepository
func NewActivityRepository(client redis.UniversalClient, prefix string) *ActivityRepository {
	return &ActivityRepository{client: client, prefix: prefix}
}

func (r *ActivityRepository) namesKey() string {
	return r.prefix + ":names"
}

func (r *ActivityRepository) activityKey(name string) string {
	return r.prefix + ":activity:" + keyEscaper.Replace(name)
}

func (r *ActivityRepository) participantsKey(name string) string {
	return r.prefix + ":activity:" + keyEscaper.Replace(name) + ":participants"
}

// keyEscaper экранирует разделитель ключей, чтобы названия вида "X:participants"
// не совпадали с ключами другого мероприятия
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Seed добавляет отсутствующие мероприятия. Название в SET и запись мероприятия
// пишутся одной транзакцией MULTI под WATCH; если название уже есть, а записи нет,
// запись восстанавливается
func (r *ActivityRepository) Seed(ctx context.Context, activities []domain.Activity) error {
	for _, a := range activities {
		if err := r.seedOne(ctx, a); err != nil {
			return fmt.Errorf("failed to seed activity %q: %w", a.Name, err)
		}
	}
	return nil
}

func (r *ActivityRepository) seedOne(ctx context.Context, a domain.Activity) error {
	recordKey := r.activityKey(a.Name)
	listKey := r.participantsKey(a.Name)

	txf := func(tx *redis.Tx) error {
		known, err := tx.SIsMember(ctx, r.namesKey(), a.Name).Result()
		if err != nil {
			return err
		}
		hasRecord, err := tx.Exists(ctx, recordKey).Result()
		if err != nil {
			return err
		}
		if known && hasRecord == 1 {
			return nil
		}

		// Уже записавшихся участников не теряем
		listLen, err := tx.LLen(ctx, listKey).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, recordKey,
				"description", a.Description,
				"schedule", a.Schedule,
				"max_participants", a.MaxParticipants,
			)
			if listLen == 0 && len(a.Participants) > 0 {
				values := make([]interface{}, len(a.Participants))
				for i, p := range a.Participants {
					values[i] = p
				}
				pipe.RPush(ctx, listKey, values...)
			}
			pipe.SAdd(ctx, r.namesKey(), a.Name)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, r.namesKey(), recordKey, listKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return errors.New("transaction retries exhausted")
}

// List возвращает все мероприятия, отсортированные по названию
func (r *ActivityRepository) List(ctx context.Context) ([]*domain.Activity, error) {
	names, err := r.client.SMembers(ctx, r.namesKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	type pending struct {
		fields       *redis.MapStringStringCmd
		participants *redis.StringSliceCmd
	}
	cmds := make([]pending, len(names))

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			cmds[i] = pending{
				fields:       pipe.HGetAll(ctx, r.activityKey(name)),
				participants: pipe.LRange(ctx, r.participantsKey(name), 0, -1),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	activities := make([]*domain.Activity, 0, len(names))
	for i, name := range names {
		a, err := decodeActivity(name, cmds[i].fields.Val(), cmds[i].participants.Val())
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// GetByName получает мероприятие по названию
func (r *ActivityRepository) GetByName(ctx context.Context, name string) (*domain.Activity, error) {
	var (
		known        *redis.BoolCmd
		fields       *redis.MapStringStringCmd
		participants *redis.StringSliceCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		known = pipe.SIsMember(ctx, r.namesKey(), name)
		fields = pipe.HGetAll(ctx, r.activityKey(name))
		participants = pipe.LRange(ctx, r.participantsKey(name), 0, -1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !known.Val() {
		return nil, domain.ErrActivityNotFound
	}
	return decodeActivity(name, fields.Val(), participants.Val())
}

// AddParticipant добавляет участника под WATCH списка участников
func (r *ActivityRepository) AddParticipant(ctx context.Context, name, email string) error {
	key := r.participantsKey(name)

	txf := func(tx *redis.Tx) error {
		known, err := tx.SIsMember(ctx, r.namesKey(), name).Result()
		if err != nil {
			return err
		}
		if !known {
			return domain.ErrActivityNotFound
		}

		current, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}
		for _, p := range current {
			if p == email {
				return domain.ErrAlreadySignedUp
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, email)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return fmt.Errorf("signup to %q: transaction retries exhausted", name)
}

// RemoveParticipant удаляет участника. LREM атомарен сам по себе
func (r *ActivityRepository) RemoveParticipant(ctx context.Context, name, email string) error {
	removed, err := r.client.LRem(ctx, r.participantsKey(name), 1, email).Result()
	if err != nil {
		return err
	}
	if removed > 0 {
		return nil
	}

	known, err := r.client.SIsMember(ctx, r.namesKey(), name).Result()
	if err != nil {
		return err
	}
	if !known {
		return domain.ErrActivityNotFound
	}
	return domain.ErrParticipantNotFound
}

func decodeActivity(name string, fields map[string]string, participants []string) (*domain.Activity, error) {
	a := &domain.Activity{
		Name:         name,
		Description:  fields["description"],
		Schedule:     fields["schedule"],
		Participants: participants,
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}

	if raw, ok := fields["max_participants"]; ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("activity %q has invalid max_participants %q: %w", name, raw, err)
		}
		a.MaxParticipants = n
	}
	return a, nil
}
