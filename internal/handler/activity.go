package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/activity-signup/internal/domain"
	"github.com/aidar/activity-signup/internal/service"
)

// ActivityHandler обрабатывает эндпоинты мероприятий
type ActivityHandler struct {
	activityService *service.ActivityService
}

// NewActivityHandler создает новый ActivityHandler
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// ListActivities обрабатывает GET /activities
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.activityService.ListActivities(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, activities)
}

// GetActivity обрабатывает GET /activities/{activity}
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	activityName, ok := activityParam(w, r)
	if !ok {
		return
	}

	activity, err := h.activityService.GetActivity(r.Context(), activityName)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, activity)
}

// SignUp обрабатывает POST /activities/{activity}/signup?email=...
func (h *ActivityHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	activityName, email, ok := signupParams(w, r)
	if !ok {
		return
	}

	message, err := h.activityService.SignUp(r.Context(), activityName, email)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: message})
}

// Unregister обрабатывает DELETE /activities/{activity}/signup?email=...
func (h *ActivityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	activityName, email, ok := signupParams(w, r)
	if !ok {
		return
	}

	message, err := h.activityService.Unregister(r.Context(), activityName, email)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: message})
}

// signupParams извлекает название мероприятия из пути и email из query.
// При ошибке ответ уже отправлен и ok == false
func signupParams(w http.ResponseWriter, r *http.Request) (activityName, email string, ok bool) {
	activityName, ok = activityParam(w, r)
	if !ok {
		return "", "", false
	}

	email = r.URL.Query().Get("email")
	if email == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "email query parameter is required")
		return "", "", false
	}

	return activityName, email, true
}

// activityParam возвращает декодированное название мероприятия из пути
func activityParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	activityName := chi.URLParam(r, "activity")

	// chi маршрутизирует по RawPath, если он задан; тогда параметр остается экранированным
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(activityName)
		if err != nil {
			RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid activity name")
			return "", false
		}
		activityName = decoded
	}
	return activityName, true
}
