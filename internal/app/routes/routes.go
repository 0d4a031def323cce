package routes

import (
	"net/http"
	"time"

	_ "gbr-security-service/docs"
	"gbr-security-service/internal/app/controllers"
	"gbr-security-service/internal/app/middleware"
	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/domain/services/container"
	"gbr-security-service/internal/infrastructure/config"
	"gbr-security-service/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(serviceContainer *container.ServiceContainer, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.L()))

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(r *gin.Engine, container *container.ServiceContainer) {
	api := r.Group("/api")
	// 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	// 健康检查路由
	api.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	api.GET("/health", controllers.HandleHealthFunc(container, "ping"))
	api.GET("/health/status", controllers.HandleHealthFunc(container, "status"))

	// 登录，每个IP每秒1次，最多突发5次
	api.POST("/auth/login", middleware.CombinedRateLimiter(1, 5), controllers.HandleAuthFunc(container, "login"))

	// 紧急呼叫类型是静态数据
	typesCache := middleware.NewResponseCache(10 * time.Minute)
	api.GET("/emergency/types", typesCache.Handler(), controllers.HandleEmergencyFunc(container, "types"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	sessions := container.GetService("session").(services.InterfaceSessionService)

	auth := api.Group("")
	auth.Use(middleware.Authentication(sessions))

	authGroup := auth.Group("/auth")
	authGroup.POST("/logout", controllers.HandleAuthFunc(container, "logout"))
	authGroup.GET("/me", controllers.HandleAuthFunc(container, "me"))

	auth.GET("/dashboard/overview", controllers.HandleDashboardFunc(container, "overview"))

	propertyGroup := auth.Group("/properties")
	propertyGroup.GET("", controllers.HandlePropertyFunc(container, "list"))
	propertyGroup.GET("/:id", controllers.HandlePropertyFunc(container, "get"))
	propertyGroup.PUT("/:id/status", controllers.HandlePropertyFunc(container, "setStatus"))
	propertyGroup.POST("/:id/arm", controllers.HandlePropertyFunc(container, "arm"))
	propertyGroup.POST("/:id/disarm", controllers.HandlePropertyFunc(container, "disarm"))

	emergencyGroup := auth.Group("/emergency/calls")
	emergencyGroup.GET("", controllers.HandleEmergencyFunc(container, "listCalls"))
	emergencyGroup.POST("", controllers.HandleEmergencyFunc(container, "createCall"))
	emergencyGroup.GET("/:id", controllers.HandleEmergencyFunc(container, "getCall"))
	emergencyGroup.DELETE("/:id", controllers.HandleEmergencyFunc(container, "removeCall"))
}
