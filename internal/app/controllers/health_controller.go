package controllers

import (
	"context"
	"time"

	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/domain/services/container"
	"gbr-security-service/internal/error/code"
	"gbr-security-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Container *container.ServiceContainer
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{Container: container}
}

// Ping 健康检查端点
// @Summary      Ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Router       /ping [get]
// @Router       /health [get]
func (h *HealthCheckController) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status 检查数据库和 Redis 连通性并返回通知队列统计
// @Summary      Dependency status
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /health/status [get]
func (h *HealthCheckController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	healthy := true
	status := gin.H{}

	if sqlDB, err := h.Container.GetDB().DB(); err != nil {
		healthy = false
		status["database"] = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		healthy = false
		status["database"] = err.Error()
	} else {
		status["database"] = "ok"
	}

	if redisService, ok := h.Container.GetService("redis").(services.InterfaceRedisService); ok {
		if err := redisService.Ping(ctx); err != nil {
			healthy = false
			status["redis"] = err.Error()
		} else {
			status["redis"] = "ok"
		}
	} else {
		status["redis"] = "disabled"
	}

	if notifier, ok := h.Container.GetService("notify").(services.InterfaceNotifyService); ok {
		status["notifications"] = notifier.Stats()
	}

	if !healthy {
		response.Fail(c, code.ErrConnectionFailed, status)
		return
	}
	response.Success(c, status)
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	controller := NewHealthCheckController(container)

	return func(ctx *gin.Context) {
		switch method {
		case "ping":
			controller.Ping(ctx)
		case "status":
			controller.Status(ctx)
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}
