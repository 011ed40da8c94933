package domain

import "errors"

// Доменные ошибки сервиса записи на мероприятия
var (
	// ErrActivityNotFound возвращается когда мероприятие с таким названием не существует
	ErrActivityNotFound = errors.New("activity not found")

	// ErrParticipantNotFound возвращается когда email не записан на мероприятие
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrAlreadySignedUp возвращается при повторной записи того же email
	ErrAlreadySignedUp = errors.New("student is already signed up")
)

// ErrorCode представляет коды ошибок API
type ErrorCode string

// Коды ошибок API
const (
	CodeNotFound        ErrorCode = "NOT_FOUND"         // Мероприятие или участник не найдены
	CodeAlreadySignedUp ErrorCode = "ALREADY_SIGNED_UP" // Email уже записан
	CodeBadRequest      ErrorCode = "BAD_REQUEST"       // Некорректный запрос
	CodeInternal        ErrorCode = "INTERNAL_ERROR"    // Внутренняя ошибка
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrActivityNotFound), errors.Is(err, ErrParticipantNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAlreadySignedUp):
		return CodeAlreadySignedUp
	default:
		return CodeInternal
	}
}
