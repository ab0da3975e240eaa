package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fls_backend/internal/middleware"
	"fls_backend/internal/services"
	"fls_backend/internal/services/dto"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware())
	{
		reviews.GET("/pending", h.ListPending)
		reviews.PUT("/:id", h.Submit)
	}
}

func (h *ReviewHandler) ListPending(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.reviewService.ListPendingReviews(h.GetDB(c), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Submit(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.SubmitReviewRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.reviewService.SubmitReview(h.GetDB(c), user, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
