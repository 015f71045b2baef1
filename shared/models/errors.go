package models

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrQuestNotFound    = errors.New("quest not found")
	ErrProgressNotFound = errors.New("quest progress not found")

	// User & Authentication Errors
	ErrUserNotFound = errors.New("user not found")
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Quest Progress Errors
	ErrQuestAlreadyStarted = errors.New("quest already started")   // Конфликт, а не тихая перезапись прогресса
	ErrNoActiveQuest       = errors.New("no active quest in session")
	ErrQuestNotCompletable = errors.New("quest has no artefacts to collect")

	// Storage Errors
	ErrCorruptData = errors.New("corrupt stored data") // Кривой JSON в хранилище - падаем громко

	// General Request Errors
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidInput = errors.New("invalid input data")
)

// OutOfSequenceError - ожидаемый (не фатальный) исход обычной игры:
// пользователь сдал артефакт sequential-квеста вне очереди. Несёт обновлённый
// счётчик попыток этого артефакта, чтобы вызывающая сторона могла вычислить
// подсказку без второго запроса.
type OutOfSequenceError struct {
	ArtefactID string
	Attempts   int32
}

func (e *OutOfSequenceError) Error() string {
	return fmt.Sprintf("artefact %s submitted out of sequence (attempts: %d)", e.ArtefactID, e.Attempts)
}

// IsOutOfSequence извлекает OutOfSequenceError из цепочки ошибок.
func IsOutOfSequence(err error) (*OutOfSequenceError, bool) {
	var oos *OutOfSequenceError
	if errors.As(err, &oos) {
		return oos, true
	}
	return nil, false
}

// ErrorResponse - стандартизированный ответ об ошибке для обоих сервисов.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Машиночитаемые коды ошибок для клиента.
const (
	ErrCodeQuestNotFound    = "QUEST_NOT_FOUND"
	ErrCodeProgressNotFound = "PROGRESS_NOT_FOUND"
	ErrCodeAlreadyStarted   = "ALREADY_STARTED"
	ErrCodeOutOfSequence    = "OUT_OF_SEQUENCE"
	ErrCodeNoActiveQuest    = "NO_ACTIVE_QUEST"
	ErrCodeTokenInvalid     = "TOKEN_INVALID"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)
