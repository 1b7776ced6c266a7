package handler

import (
	"thywilluche/internal/domain/user/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"

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

// SignupInput 注册输入
type SignupInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginInput 登录输入，identifier 为邮箱或用户名
type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required,len=6"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type ProfileInput struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Image *string `json:"image" binding:"omitempty,url"`
	Bio   *string `json:"bio" binding:"omitempty,max=500"`
}

type RoleInput struct {
	Role string `json:"role" binding:"required,oneof=USER ADMIN"`
}

// UserListQuery 管理端查询参数
type UserListQuery struct {
	Search string `form:"search"`
	Role   string `form:"role"`
	utils.Pagination
}

// Signup 注册
// @Summary 注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body SignupInput true "注册信息"
// @Success 200 {object} model.User
// @Router /auth/signup [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := h.service.Signup(c.Request.Context(), service.SignupInput{
		Name:     input.Name,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "account created", user)
}

// Login 登录
// @Summary 登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "邮箱或用户名 + 密码"
// @Success 200 {object} service.LoginResult
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Identifier, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// ForgotPassword 发送重置验证码
// @Summary 忘记密码
// @Tags Auth
// @Accept json
// @Param input body ForgotPasswordInput true "邮箱"
// @Success 200 {string} string "success"
// @Router /auth/password/forgot [post]
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), input.Email); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "if the email is registered a code has been sent", nil)
}

// ResetPassword 使用验证码重置密码
// @Summary 重置密码
// @Tags Auth
// @Accept json
// @Param input body ResetPasswordInput true "邮箱、验证码、新密码"
// @Success 200 {string} string "success"
// @Router /auth/password/reset [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), input.Email, input.Code, input.Password); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "password updated", nil)
}

// GetMe 当前用户
// @Summary 当前用户
// @Tags User
// @Security Bearer
// @Success 200 {object} model.User
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.service.GetMe(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateMe 更新资料
// @Summary 更新资料
// @Tags User
// @Security Bearer
// @Accept json
// @Param input body ProfileInput true "资料"
// @Success 200 {object} model.User
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), service.ProfileInput{
		Name:  input.Name,
		Image: input.Image,
		Bio:   input.Bio,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// ListUsers 用户列表 (管理员)
// @Summary 用户列表
// @Tags Admin
// @Security Bearer
// @Param search query string false "姓名/用户名/邮箱"
// @Param role query string false "USER | ADMIN"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} utils.PageResult
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), service.ListQuery{
		Search:     q.Search,
		Role:       q.Role,
		Pagination: q.Pagination,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(users, total, q.Pagination))
}

// GetUser 获取单个用户 (管理员)
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// ChangeRole 修改角色 (管理员)
// @Summary 修改角色
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param id path string true "用户ID"
// @Param input body RoleInput true "角色"
// @Success 200 {object} model.User
// @Router /admin/users/{id}/role [patch]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := h.service.ChangeRole(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Role)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}
