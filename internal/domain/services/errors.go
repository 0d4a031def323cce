package services

import "errors"

var (
	// ErrSessionNotFound 会话不存在或已退出
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidToken 令牌无效
	ErrInvalidToken = errors.New("invalid token")

	// ErrPropertyNotFound 物业不存在
	ErrPropertyNotFound = errors.New("property not found")
	// ErrInvalidTargetStatus 只能布防或撤防
	ErrInvalidTargetStatus = errors.New("target status must be armed or disarmed")
	// ErrTransitionInProgress 该物业已有状态切换在进行中
	ErrTransitionInProgress = errors.New("status transition already in progress")
	// ErrRegistryUnavailable 物业数据读取失败
	ErrRegistryUnavailable = errors.New("property registry unavailable")
	// ErrStatusChangeFailed 本地状态更新失败
	ErrStatusChangeFailed = errors.New("status change failed")

	// ErrInvalidCategory 未知的紧急呼叫类型
	ErrInvalidCategory = errors.New("invalid emergency category")
	// ErrCallNotFound 紧急呼叫不存在
	ErrCallNotFound = errors.New("emergency call not found")

	// ErrQueueClosed 通知队列已关闭
	ErrQueueClosed = errors.New("notification queue closed")
)
