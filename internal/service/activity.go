package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aidar/activity-signup/internal/domain"
	"github.com/aidar/activity-signup/internal/metrics"
	"github.com/aidar/activity-signup/internal/repository"
)

// ActivityService handles business logic for activity signups
type ActivityService struct {
	activityRepo repository.ActivityRepository
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(activityRepo repository.ActivityRepository, m *metrics.Metrics, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		metrics:      m,
		logger:       logger,
	}
}

// ListActivities returns every activity keyed by its name
func (s *ActivityService) ListActivities(ctx context.Context) (map[string]*domain.Activity, error) {
	activities, err := s.activityRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list activities", zap.Error(err))
		return nil, err
	}

	byName := make(map[string]*domain.Activity, len(activities))
	for _, a := range activities {
		byName[a.Name] = a
	}
	return byName, nil
}

// GetActivity returns a single activity by name
func (s *ActivityService) GetActivity(ctx context.Context, activityName string) (*domain.Activity, error) {
	activity, err := s.activityRepo.GetByName(ctx, activityName)
	if err != nil {
		if !errors.Is(err, domain.ErrActivityNotFound) {
			s.logger.Error("Failed to get activity", zap.String("activity", activityName), zap.Error(err))
		}
		return nil, err
	}
	return activity, nil
}

// SignUp registers email for the activity and returns a confirmation message
func (s *ActivityService) SignUp(ctx context.Context, activityName, email string) (string, error) {
	err := s.activityRepo.AddParticipant(ctx, activityName, email)
	s.metrics.Signups.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		s.logFailure("Signup rejected", activityName, email, err)
		return "", err
	}

	s.logger.Info("Participant signed up", zap.String("activity", activityName), zap.String("email", email))
	return fmt.Sprintf("Signed up %s for %s", email, activityName), nil
}

// Unregister removes email from the activity and returns a confirmation message
func (s *ActivityService) Unregister(ctx context.Context, activityName, email string) (string, error) {
	err := s.activityRepo.RemoveParticipant(ctx, activityName, email)
	s.metrics.Unregistrations.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		s.logFailure("Unregister rejected", activityName, email, err)
		return "", err
	}

	s.logger.Info("Participant unregistered", zap.String("activity", activityName), zap.String("email", email))
	return fmt.Sprintf("Unregistered %s from %s", email, activityName), nil
}

// logFailure logs expected domain outcomes at debug and anything else at error
func (s *ActivityService) logFailure(msg, activityName, email string, err error) {
	fields := []zap.Field{zap.String("activity", activityName), zap.String("email", email), zap.Error(err)}
	if resultLabel(err) == metrics.ResultError {
		s.logger.Error(msg, fields...)
		return
	}
	s.logger.Debug(msg, fields...)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, domain.ErrActivityNotFound), errors.Is(err, domain.ErrParticipantNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, domain.ErrAlreadySignedUp):
		return metrics.ResultDuplicate
	default:
		return metrics.ResultError
	}
}
