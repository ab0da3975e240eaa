package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fls_backend/internal/middleware"
	"fls_backend/internal/services"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
	chatService services.ChatService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, chatService services.ChatService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
		chatService: chatService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", h.GetMe)
		users.DELETE("/me", h.DeleteMe)
		users.GET("/me/chats", h.ListChats)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.DELETE("/users/:id", h.DeleteUser)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.userService.GetMe(h.GetDB(c), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(h.GetDB(c), user.ID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (h *UserHandler) ListChats(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	rooms, err := h.chatService.ListRooms(h.GetDB(c), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
