package controllers

import (
	"gbr-security-service/internal/app/middleware"
	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/domain/services/container"
	"gbr-security-service/internal/error/code"
	"gbr-security-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// AuthController 处理登录会话请求
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController 创建一个新的认证控制器
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 表示登录请求
type LoginRequest struct {
	Email    string `json:"email" example:"client@example.com"`
	Password string `json:"password" example:"any"`
}

// HandleAuthFunc 返回一个处理认证请求的Gin处理函数
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "logout":
			controller.Logout()
		case "me":
			controller.Me()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *AuthController) sessions() services.InterfaceSessionService {
	return c.Container.GetService("session").(services.InterfaceSessionService)
}

// 1. Login 处理用户登录
// @Summary      Login
// @Description  Start a session for the demo identity bound to the given email. The password is not checked.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200  {object}  SuccessResponse{data=services.LoginResult}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request: "+err.Error(), nil)
		return
	}

	result, err := c.sessions().Login(c.Ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, result)
}

// 2. Logout 退出登录
// @Summary      Logout
// @Description  Clear the persisted session of the bearer token
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (c *AuthController) Logout() {
	session, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	if err := c.sessions().Logout(c.Ctx.Request.Context(), session.ID); err != nil {
		fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, nil)
}

// 3. Me 返回当前用户
// @Summary      Current user
// @Description  Return the identity restored from the session store
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
// @Security     BearerAuth
func (c *AuthController) Me() {
	session, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	response.Success(c.Ctx, session.User)
}
