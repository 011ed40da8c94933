package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/aidar/activity-signup/internal/domain"
)

// ErrorResponse представляет ответ с ошибкой.
// Detail дублирует текст ошибки для браузерного клиента, который читает поле detail
type ErrorResponse struct {
	Error  ErrorDetail `json:"error"`
	Detail string      `json:"detail"`
}

// ErrorDetail содержит код и описание ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
		Detail: message,
	})
}

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	code := string(domain.MapErrorToCode(err))

	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		RespondWithError(w, r, http.StatusNotFound, code, "Activity not found")
	case errors.Is(err, domain.ErrParticipantNotFound):
		RespondWithError(w, r, http.StatusNotFound, code, "Participant not found in this activity")
	case errors.Is(err, domain.ErrAlreadySignedUp):
		RespondWithError(w, r, http.StatusBadRequest, code, "Student is already signed up for this activity")
	default:
		RespondWithError(w, r, http.StatusInternalServerError, code, "internal server error")
	}
}
