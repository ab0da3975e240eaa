package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/logger"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/validator"
	"fls_backend/pkg/contextkeys"
)

type BaseHandler struct {
	validator *validator.Validator
	userRepo  repositories.UserRepository
}

func NewBaseHandler(v *validator.Validator, userRepo repositories.UserRepository) *BaseHandler {
	return &BaseHandler{
		validator: v,
		userRepo:  userRepo,
	}
}

// GetDB извлекает *gorm.DB (пул или транзакцию) из gin.Context.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBind(obj); err != nil {
		logger.CtxWarn(ctx, "Failed to bind JSON body", "error", err.Error(), "path", c.Request.URL.Path)
		appErrors.HandleError(c, appErrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			appErrors.HandleError(c, appErrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxError(ctx, "Internal validator error", "error", err.Error(), "path", c.Request.URL.Path)
			appErrors.HandleError(c, appErrors.InternalError(err))
		}
		return false
	}
	return true
}

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *appErrors.AppError
	if appErrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		appErrors.HandleError(c, appErr)
	} else {
		logger.CtxError(ctx, "Internal server error", "error", err.Error(), "path", c.Request.URL.Path)
		appErrors.HandleError(c, appErrors.InternalError(err))
	}
}

// CurrentUser загружает аутентифицированного пользователя. Возвращает
// false и пишет ответ, если его нет (токен живее аккаунта).
func (h *BaseHandler) CurrentUser(c *gin.Context) (*models.User, bool) {
	userIDVal, exists := c.Get("userID")
	if !exists {
		appErrors.HandleError(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		appErrors.HandleError(c, appErrors.ErrUnauthorized)
		return nil, false
	}

	user, err := h.userRepo.FindByID(h.GetDB(c), userID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrUserNotFound) {
			appErrors.HandleError(c, appErrors.ErrUnauthorized)
			return nil, false
		}
		appErrors.HandleError(c, appErrors.InternalError(err))
		return nil, false
	}
	return user, true
}
