package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 资源状态冲突.
	StatusConflict = 409
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusServiceUnavailable - 503: 依赖不可用.
	StatusServiceUnavailable = 503
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 会话相关错误码 (101xxx).
const (
	// ErrSessionNotFound - 401: 会话不存在或已退出.
	ErrSessionNotFound int = iota + 101000
	// ErrSessionStore - 500: 会话存储不可用.
	ErrSessionStore
)

// 物业相关错误码 (102xxx).
const (
	// ErrPropertyNotFound - 404: 物业不存在.
	ErrPropertyNotFound int = iota + 102000
	// ErrInvalidTargetStatus - 400: 目标状态无效.
	ErrInvalidTargetStatus
	// ErrTransitionInProgress - 409: 状态切换进行中.
	ErrTransitionInProgress
	// ErrStatusChangeFailed - 500: 状态切换失败.
	ErrStatusChangeFailed
)

// 紧急呼叫相关错误码 (104xxx).
const (
	// ErrCallNotFound - 404: 呼叫记录不存在.
	ErrCallNotFound int = iota + 104000
	// ErrInvalidCategory - 400: 呼叫类型无效.
	ErrInvalidCategory
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrConnectionFailed - 503: 连接失败.
	ErrConnectionFailed
)
