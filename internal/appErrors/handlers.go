package appErrors

import (
	"github.com/gin-gonic/gin"

	"fls_backend/internal/logger"
)

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// From приводит любую ошибку к *AppError, заворачивая неизвестные
// ошибки как внутренние.
func From(err error) *AppError {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr
	}
	return InternalError(err)
}

// HandleError - обработка ошибок для Gin контекста
func HandleError(c *gin.Context, err error) {
	appErr := From(err)
	if appErr.HTTPCode >= 500 {
		logger.CtxError(c.Request.Context(), "server error", "error", appErr.Error())
	}
	c.JSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// HandleValidationError - специальный обработчик для ошибок валидации
func HandleValidationError(c *gin.Context, details interface{}) {
	HandleError(c, ErrValidationFailed.WithDetails(details))
}
