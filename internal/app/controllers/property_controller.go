package controllers

import (
	"gbr-security-service/internal/domain/models"
	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/domain/services/container"
	"gbr-security-service/internal/error/code"
	"gbr-security-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// PropertyController 处理物业查询和布防/撤防请求
type PropertyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPropertyController 创建物业控制器
func NewPropertyController(ctx *gin.Context, container *container.ServiceContainer) *PropertyController {
	return &PropertyController{
		Ctx:       ctx,
		Container: container,
	}
}

// StatusRequest 表示状态切换请求
type StatusRequest struct {
	Status models.PropertyStatus `json:"status" binding:"required" example:"armed"`
}

// HandlePropertyFunc 返回一个处理物业请求的Gin处理函数
func HandlePropertyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPropertyController(ctx, container)

		switch method {
		case "list":
			controller.List()
		case "get":
			controller.Get()
		case "setStatus":
			var req StatusRequest
			if err := ctx.ShouldBindJSON(&req); err != nil {
				response.FailWithMessage(ctx, code.ErrBind, "invalid request: "+err.Error(), nil)
				return
			}
			controller.SetStatus(req.Status)
		case "arm":
			controller.SetStatus(models.PropertyStatusArmed)
		case "disarm":
			controller.SetStatus(models.PropertyStatusDisarmed)
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *PropertyController) registry() services.InterfacePropertyService {
	return c.Container.GetService("property").(services.InterfacePropertyService)
}

// 1. List 获取所有物业
// @Summary      List properties
// @Tags         Properties
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.Property}
// @Failure      401  {object}  ErrorResponse
// @Router       /properties [get]
// @Security     BearerAuth
func (c *PropertyController) List() {
	properties, err := c.registry().List(c.Ctx.Request.Context())
	if err != nil {
		fail(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, properties)
}

// 2. Get 获取单个物业
// @Summary      Get property
// @Tags         Properties
// @Produce      json
// @Param        id   path      string  true  "Property ID"
// @Success      200  {object}  SuccessResponse{data=models.Property}
// @Failure      404  {object}  ErrorResponse
// @Router       /properties/{id} [get]
// @Security     BearerAuth
func (c *PropertyController) Get() {
	property, err := c.registry().Get(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		fail(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, property)
}

// 3. SetStatus 布防或撤防，请求在模拟的远端往返完成后返回
// @Summary      Change security status
// @Description  Arm or disarm a property. Sensors follow the property status. Only one change per property may run at a time.
// @Tags         Properties
// @Accept       json
// @Produce      json
// @Param        id       path  string         true  "Property ID"
// @Param        request  body  StatusRequest  true  "Target status (armed or disarmed)"
// @Success      200  {object}  SuccessResponse{data=models.Property}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "A change for this property is in progress"
// @Failure      500  {object}  ErrorResponse
// @Router       /properties/{id}/status [put]
// @Router       /properties/{id}/arm [post]
// @Router       /properties/{id}/disarm [post]
// @Security     BearerAuth
func (c *PropertyController) SetStatus(target models.PropertyStatus) {
	security := c.Container.GetService("security").(services.InterfaceSecurityService)

	property, err := security.SetStatus(c.Ctx.Request.Context(), c.Ctx.Param("id"), target, currentUserID(c.Ctx))
	if err != nil {
		fail(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, property)
}
