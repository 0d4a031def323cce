package controllers

import (
	"gbr-security-service/internal/domain/models"
	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/domain/services/container"
	"gbr-security-service/internal/error/code"
	"gbr-security-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// EmergencyController 处理紧急呼叫相关的请求
type EmergencyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewEmergencyController 创建一个新的紧急呼叫控制器
func NewEmergencyController(ctx *gin.Context, container *container.ServiceContainer) *EmergencyController {
	return &EmergencyController{
		Ctx:       ctx,
		Container: container,
	}
}

// EmergencyCallRequest 表示紧急呼叫请求
type EmergencyCallRequest struct {
	Type        models.EmergencyType `json:"type" example:"fire"`
	Description string               `json:"description" example:"Запах дыма на кухне"`
}

// HandleEmergencyFunc 返回一个处理紧急呼叫请求的Gin处理函数
func HandleEmergencyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewEmergencyController(ctx, container)

		switch method {
		case "types":
			controller.Types()
		case "listCalls":
			controller.ListCalls()
		case "createCall":
			controller.CreateCall()
		case "getCall":
			controller.GetCall()
		case "removeCall":
			controller.RemoveCall()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *EmergencyController) dispatcher() services.InterfaceEmergencyService {
	return c.Container.GetService("emergency").(services.InterfaceEmergencyService)
}

// 1. Types 获取可选的紧急呼叫类型
// @Summary      Emergency types
// @Tags         Emergency
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.EmergencyCategory}
// @Router       /emergency/types [get]
func (c *EmergencyController) Types() {
	response.Success(c.Ctx, c.dispatcher().Categories())
}

// 2. ListCalls 获取进行中的紧急呼叫，最新的在前
// @Summary      List emergency calls
// @Tags         Emergency
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.EmergencyCall}
// @Failure      401  {object}  ErrorResponse
// @Router       /emergency/calls [get]
// @Security     BearerAuth
func (c *EmergencyController) ListCalls() {
	response.Success(c.Ctx, c.dispatcher().ListCalls())
}

// 3. CreateCall 发起紧急呼叫，呼叫在调度延迟后变为 dispatched
// @Summary      Create emergency call
// @Tags         Emergency
// @Accept       json
// @Produce      json
// @Param        request body EmergencyCallRequest true "Emergency call request"
// @Success      200  {object}  SuccessResponse{data=models.EmergencyCall}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /emergency/calls [post]
// @Security     BearerAuth
func (c *EmergencyController) CreateCall() {
	var req EmergencyCallRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request: "+err.Error(), nil)
		return
	}
	if req.Type == "" {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "type is required", nil)
		return
	}

	call, err := c.dispatcher().CreateCall(c.Ctx.Request.Context(), req.Type, req.Description, currentUserID(c.Ctx))
	if err != nil {
		fail(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, call)
}

// 4. GetCall 获取单个紧急呼叫
// @Summary      Get emergency call
// @Tags         Emergency
// @Produce      json
// @Param        id   path      string  true  "Call ID"
// @Success      200  {object}  SuccessResponse{data=models.EmergencyCall}
// @Failure      404  {object}  ErrorResponse
// @Router       /emergency/calls/{id} [get]
// @Security     BearerAuth
func (c *EmergencyController) GetCall() {
	call, err := c.dispatcher().GetCall(c.Ctx.Param("id"))
	if err != nil {
		fail(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, call)
}

// 5. RemoveCall 移除紧急呼叫并取消尚未执行的调度
// @Summary      Remove emergency call
// @Tags         Emergency
// @Produce      json
// @Param        id   path      string  true  "Call ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /emergency/calls/{id} [delete]
// @Security     BearerAuth
func (c *EmergencyController) RemoveCall() {
	if err := c.dispatcher().RemoveCall(c.Ctx.Param("id")); err != nil {
		fail(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
