package appErrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// AppError - основная структура ошибки приложения
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is позволяет errors.Is сопоставлять ошибки по коду, а не по указателю:
// сервисы возвращают копии предопределенных ошибок с уточненным текстом.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if stderrors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// Конструктор
func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// С цепочкой ошибок
func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) WithMessage(message string) *AppError {
	clone := *e
	clone.Message = message
	return &clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// Для маршалинга в JSON
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Предопределенные ошибки
var (
	// Аутентификация
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrUnauthorized       = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrInvalidToken       = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)

	// Пользователи
	ErrUserNotFound       = New(CodeUserNotFound, "User not found", http.StatusNotFound)
	ErrEmailAlreadyExists = New(CodeEmailAlreadyExists, "Email already exists", http.StatusConflict)

	// Валидация
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
	ErrPriceOutOfRange  = New(CodePriceOutOfRange, "Proposed price must be within the project's price range", http.StatusBadRequest)
	ErrDateOutOfRange   = New(CodeDateOutOfRange, "Submission date must be before the project due date", http.StatusBadRequest)

	// Проекты и предложения
	ErrProjectNotFound  = New(CodeProjectNotFound, "Project not found", http.StatusNotFound)
	ErrProposalNotFound = New(CodeProposalNotFound, "Selected proposal not found for this project or the proposer not found", http.StatusNotFound)
	ErrReviewNotFound   = New(CodeReviewNotFound, "Review not found", http.StatusNotFound)
	ErrDisputeNotFound  = New(CodeDisputeNotFound, "Dispute not found", http.StatusNotFound)

	// Леджер
	ErrInsufficientBalance = New(CodeInsufficientBalance, "Insufficient points", http.StatusBadRequest)
	ErrInsufficientBids    = New(CodeInsufficientBids, "Insufficient bids", http.StatusBadRequest)

	// Жизненный цикл
	ErrInvalidState       = New(CodeInvalidState, "Invalid project state for this operation", http.StatusConflict)
	ErrDisputeOpen        = New(CodeDisputeOpen, "There is an open dispute for this project. Cannot mark as complete", http.StatusConflict)
	ErrDuplicateDispute   = New(CodeDuplicate, "You have already opened a dispute for this project", http.StatusConflict)
	ErrNotEligible        = New(CodeNotEligible, "You have already proposed for this project", http.StatusForbidden)
	ErrProposalChosen     = New(CodeInvalidState, "A proposal has already been selected for this project", http.StatusConflict)

	// Системные
	ErrConfiguration = New(CodeConfigurationError, "Platform superuser account is not configured", http.StatusInternalServerError)
)

// Функции-помощники для создания ошибок с деталями
func ValidationError(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}
