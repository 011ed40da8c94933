package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/aidar/activity-signup/internal/domain"
	"github.com/aidar/activity-signup/internal/metrics"
	"github.com/aidar/activity-signup/internal/repository"
	"github.com/aidar/activity-signup/internal/repository/memory"
	"github.com/aidar/activity-signup/internal/seed"
	"github.com/aidar/activity-signup/internal/service"
)

// testServer содержит роутер и репозиторий для прямой проверки состояния
type testServer struct {
	router http.Handler
	repo   repository.ActivityRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := memory.NewActivityRepository()
	require.NoError(t, repo.Seed(context.Background(), seed.Default()))

	return newTestServerWithRepo(t, repo)
}

func newTestServerWithRepo(t *testing.T, repo repository.ActivityRepository) *testServer {
	t.Helper()

	logger := zaptest.NewLogger(t)
	m := metrics.New()
	svc := service.NewActivityService(repo, m, logger)

	return &testServer{
		router: NewRouter(NewActivityHandler(svc), m, logger),
		repo:   repo,
	}
}

func (s *testServer) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func (s *testServer) participants(t *testing.T, activity string) []string {
	t.Helper()

	a, err := s.repo.GetByName(context.Background(), activity)
	require.NoError(t, err)
	return a.Participants
}

func signupPath(activity, email string) string {
	return "/activities/" + url.PathEscape(activity) + "/signup?email=" + url.QueryEscape(email)
}

func TestListActivities(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/activities")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]struct {
		Description     string   `json:"description"`
		Schedule        string   `json:"schedule"`
		MaxParticipants int      `json:"max_participants"`
		Participants    []string `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Contains(t, body, "Gym Class")
	gym := body["Gym Class"]
	assert.Equal(t, 30, gym.MaxParticipants)
	assert.NotEmpty(t, gym.Schedule)
	assert.Equal(t, []string{"john@mergington.edu", "olivia@mergington.edu"}, gym.Participants)
	assert.Len(t, body, len(seed.Default()))
}

func TestGetActivity(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/activities/Gym%20Class")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Description     string   `json:"description"`
		MaxParticipants int      `json:"max_participants"`
		Participants    []string `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 30, body.MaxParticipants)
	assert.NotEmpty(t, body.Description)
	assert.Equal(t, []string{"john@mergington.edu", "olivia@mergington.edu"}, body.Participants)

	rec = s.do(t, http.MethodGet, "/activities/NoSuchActivity")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, string(domain.CodeNotFound), errResp.Error.Code)
}

func TestErrorResponseHasDetail(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, signupPath("Gym Class", "john@mergington.edu"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Student is already signed up for this activity", body["detail"])

	rec = s.do(t, http.MethodDelete, signupPath("Math Club", "i-dont-exist@example.com"))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "Participant not found in this activity", errResp.Detail)
	assert.Equal(t, errResp.Error.Message, errResp.Detail)
}

func TestSignupAndUnregisterFlow(t *testing.T) {
	s := newTestServer(t)
	activity := "Chess Club"
	email := "teststudent@example.com"
	require.NotContains(t, s.participants(t, activity), email)

	// Запись
	rec := s.do(t, http.MethodPost, signupPath(activity, email))
	require.Equal(t, http.StatusOK, rec.Code)

	var msg MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Contains(t, msg.Message, "Signed up")
	assert.Contains(t, s.participants(t, activity), email)

	// Повторная запись
	rec = s.do(t, http.MethodPost, signupPath(activity, email))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, string(domain.CodeAlreadySignedUp), errResp.Error.Code)

	count := 0
	for _, p := range s.participants(t, activity) {
		if p == email {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Отмена записи
	rec = s.do(t, http.MethodDelete, signupPath(activity, email))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Contains(t, msg.Message, "Unregistered")
	assert.NotContains(t, s.participants(t, activity), email)
}

func TestUnregisterNonexistentActivityOrParticipant(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodDelete, signupPath("NoSuchActivity", "nobody@example.com"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	before := s.participants(t, "Math Club")
	require.NotContains(t, before, "i-dont-exist@example.com")

	rec = s.do(t, http.MethodDelete, signupPath("Math Club", "i-dont-exist@example.com"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, string(domain.CodeNotFound), errResp.Error.Code)
	assert.Equal(t, before, s.participants(t, "Math Club"))
}

func TestSignupUnknownActivity(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, signupPath("NoSuchActivity", "nobody@example.com"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignupMissingEmail(t *testing.T) {
	s := newTestServer(t)
	before := s.participants(t, "Chess Club")

	for _, method := range []string{http.MethodPost, http.MethodDelete} {
		rec := s.do(t, method, "/activities/Chess%20Club/signup")
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
	}
	assert.Equal(t, before, s.participants(t, "Chess Club"))
}

func TestSignupEscapedActivityName(t *testing.T) {
	s := newTestServer(t)

	// %2F заставляет net/http сохранить RawPath, chi тогда отдает параметр экранированным
	rec := s.do(t, http.MethodPost, "/activities/Chess%20Club%2F/signup?email=a%40example.com")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/activities/Chess%20Club/signup?email=a%40example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, s.participants(t, "Chess Club"), "a@example.com")
}

func TestStoreFailureIsInternalError(t *testing.T) {
	s := newTestServerWithRepo(t, brokenRepository{})

	rec := s.do(t, http.MethodGet, "/activities")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = s.do(t, http.MethodPost, signupPath("Chess Club", "a@example.com"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s.do(t, http.MethodPost, signupPath("Art Club", "painter@example.com"))

	rec = s.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `activity_signups_total{result="success"} 1`)
}

type brokenRepository struct{}

var errBroken = errors.New("store unavailable")

func (brokenRepository) Seed(context.Context, []domain.Activity) error { return errBroken }
func (brokenRepository) List(context.Context) ([]*domain.Activity, error) {
	return nil, errBroken
}
func (brokenRepository) GetByName(context.Context, string) (*domain.Activity, error) {
	return nil, errBroken
}
func (brokenRepository) AddParticipant(context.Context, string, string) error    { return errBroken }
func (brokenRepository) RemoveParticipant(context.Context, string, string) error { return errBroken }
