package container

import (
	"context"
	"errors"
	"sync"
	"time"

	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	logger *zap.Logger

	// 基础服务
	jwtService   services.InterfaceJWTService
	redisService services.InterfaceRedisService

	// 通知
	notifyService services.InterfaceNotifyService
	mqttSink      *services.MQTTNotificationSink

	// 业务服务
	sessionService   services.InterfaceSessionService
	propertyService  services.InterfacePropertyService
	securityService  services.InterfaceSecurityService
	emergencyService services.InterfaceEmergencyService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器，redisClient 为空或不可用时会话保存在内存中
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		logger: logger,
	}
	container.initializeServices(redisClient)
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices(redisClient *redis.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config)

	// 会话存储：Redis 优先，不可用时退回内存
	var sessions services.SessionRepository = services.NewMemorySessionRepository()
	if redisClient != nil {
		redisService := services.NewRedisServiceWithClient(redisClient)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisService.Ping(ctx)
		cancel()

		if err != nil {
			c.logger.Warn("redis unavailable, sessions kept in memory", zap.Error(err))
			_ = redisClient.Close()
		} else {
			c.redisService = redisService
			sessions = services.NewRedisSessionRepository(redisService)
		}
	}
	c.sessionService = services.NewSessionService(sessions, c.jwtService, c.logger)

	// 通知通道
	sinks := []services.NotificationSink{}
	if c.config.NotifyBaseURL != "" {
		sinks = append(sinks, services.NewHTTPNotificationSink(c.config.NotifyBaseURL, c.config.NotifyTimeout))
	}
	if c.config.MQTTBrokerURL != "" {
		c.mqttSink = services.NewMQTTNotificationSink(c.config, c.logger)
		if err := c.mqttSink.Connect(5 * time.Second); err != nil {
			c.logger.Warn("mqtt connect failed, retrying in background", zap.Error(err))
		}
		sinks = append(sinks, c.mqttSink)
	}
	c.notifyService = services.NewNotifyService(sinks, c.config.NotifyQueueSize, c.config.NotifyTimeout, c.logger)

	// 业务服务
	c.propertyService = services.NewPropertyService(c.db, c.logger)
	c.securityService = services.NewSecurityService(c.propertyService, c.notifyService, c.config.TransitionLatency, c.logger)
	c.emergencyService = services.NewEmergencyService(c.propertyService, c.notifyService, c.config.DispatchDelay, c.logger)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		// nil interface when Redis is not in use
		if c.redisService == nil {
			return nil
		}
		return c.redisService
	case "notify":
		return c.notifyService
	case "session":
		return c.sessionService
	case "property":
		return c.propertyService
	case "security":
		return c.securityService
	case "emergency":
		return c.emergencyService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Close 停止调度计时器，清空通知队列并断开外部连接
func (c *ServiceContainer) Close(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.emergencyService.Close()
	err := c.notifyService.Close(ctx)

	if c.mqttSink != nil {
		c.mqttSink.Disconnect()
	}
	if c.redisService != nil {
		err = errors.Join(err, c.redisService.Close())
	}
	return err
}
