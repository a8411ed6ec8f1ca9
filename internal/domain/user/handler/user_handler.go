package handler

import (
	"net/http"

	"mini_shop/internal/domain/user/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/validate"
	"mini_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,strongpwd"`
	Email    string `json:"email" binding:"omitempty,email"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// LoginInput 登录输入
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileInput 资料修改输入
type ProfileInput struct {
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// ChangePasswordInput 修改密码输入
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// Register 处理注册请求
// @Summary 注册
// @Tags User
// @Accept json
// @Produce json
// @Param input body RegisterInput true "注册信息"
// @Success 201 {object} response.Response{data=service.AuthResult}
// @Router /users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	result, err := h.service.Register(c.Request.Context(), service.RegisterParams{
		Username: input.Username,
		Password: input.Password,
		Email:    input.Email,
		Address:  input.Address,
		Phone:    input.Phone,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Registration successful", result)
}

// Login 处理登录请求
// @Summary 登录
// @Tags User
// @Accept json
// @Produce json
// @Param input body LoginInput true "用户名和密码"
// @Success 200 {object} response.Response{data=service.AuthResult}
// @Router /users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// GetProfile 当前用户资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateProfile 修改资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), service.ProfileParams{
		Email:   input.Email,
		Address: input.Address,
		Phone:   input.Phone,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Profile updated successfully", user)
}

// ChangePassword 修改密码
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), middleware.GetUserID(c), input.OldPassword, input.NewPassword); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Password updated successfully", nil)
}
