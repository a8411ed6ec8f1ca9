package handler

import (
	"net/http"
	"strconv"

	"mini_shop/internal/domain/review/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/validate"
	"mini_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service service.ReviewService
}

func NewReviewHandler(s service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: s}
}

// SubmitReviewInput 评价输入
type SubmitReviewInput struct {
	ProductID uint   `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
}

// ListReviews 评价列表
// @Summary 评价列表
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param productId query int false "按商品过滤"
// @Success 200 {object} response.Response{data=[]model.ReviewView}
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var productID uint
	if raw := c.Query("productId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid productId")
			return
		}
		productID = uint(id)
	}

	reviews, err := h.service.ListReviews(c.Request.Context(), productID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, reviews)
}

// SubmitReview 发表评价
// @Summary 发表评价
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body SubmitReviewInput true "评价内容"
// @Success 201 {object} response.Response{data=model.Review}
// @Failure 403 {object} response.Response "未购买该商品"
// @Router /reviews [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var input SubmitReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	review, err := h.service.SubmitReview(c.Request.Context(), middleware.GetUserID(c), input.ProductID, input.Rating, input.Comment)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Review submitted successfully", review)
}
