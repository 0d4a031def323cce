package controllers

import (
	"gbr-security-service/internal/domain/models"
	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/domain/services/container"
	"gbr-security-service/internal/error/code"
	"gbr-security-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// DashboardController 处理概览面板请求
type DashboardController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// DashboardData 概览面板数据
type DashboardData struct {
	*models.DashboardOverview
	InFlight []string               `json:"inFlight"`
	Calls    []models.EmergencyCall `json:"emergencyCalls"`
}

// NewDashboardController 创建概览控制器
func NewDashboardController(ctx *gin.Context, container *container.ServiceContainer) *DashboardController {
	return &DashboardController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDashboardFunc 返回一个处理概览请求的Gin处理函数
func HandleDashboardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDashboardController(ctx, container)

		switch method {
		case "overview":
			controller.Overview()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// Overview 返回布防统计、物业列表、进行中的切换和紧急呼叫
// @Summary      Dashboard overview
// @Description  Property counts, the properties themselves, properties with a pending status change and active emergency calls
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=DashboardData}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /dashboard/overview [get]
// @Security     BearerAuth
func (c *DashboardController) Overview() {
	properties := c.Container.GetService("property").(services.InterfacePropertyService)
	security := c.Container.GetService("security").(services.InterfaceSecurityService)
	emergency := c.Container.GetService("emergency").(services.InterfaceEmergencyService)

	overview, err := properties.Overview(c.Ctx.Request.Context())
	if err != nil {
		fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, DashboardData{
		DashboardOverview: overview,
		InFlight:          security.InFlight(),
		Calls:             emergency.ListCalls(),
	})
}
