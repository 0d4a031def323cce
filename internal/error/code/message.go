package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "success",
	ErrUnknown:         "unknown error",
	ErrBind:            "invalid request body",
	ErrValidation:      "request validation failed",
	ErrTokenInvalid:    "invalid or missing token",
	ErrTooManyRequests: "too many requests, please retry later",

	// 会话相关错误码
	ErrSessionNotFound: "session expired, please sign in again",
	ErrSessionStore:    "session store unavailable",

	// 物业相关错误码
	ErrPropertyNotFound:     "property not found",
	ErrInvalidTargetStatus:  "status must be armed or disarmed",
	ErrTransitionInProgress: "a status change for this property is already in progress",
	ErrStatusChangeFailed:   "failed to change security status",

	// 紧急呼叫相关错误码
	ErrCallNotFound:    "emergency call not found",
	ErrInvalidCategory: "unknown emergency type",

	// 数据库相关错误码
	ErrDatabase:         "database error",
	ErrConnectionFailed: "dependency unavailable",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	// 会话相关错误码
	ErrSessionNotFound: StatusUnauthorized,
	ErrSessionStore:    StatusInternalServerError,

	// 物业相关错误码
	ErrPropertyNotFound:     StatusNotFound,
	ErrInvalidTargetStatus:  StatusBadRequest,
	ErrTransitionInProgress: StatusConflict,
	ErrStatusChangeFailed:   StatusInternalServerError,

	// 紧急呼叫相关错误码
	ErrCallNotFound:    StatusNotFound,
	ErrInvalidCategory: StatusBadRequest,

	// 数据库相关错误码
	ErrDatabase:         StatusInternalServerError,
	ErrConnectionFailed: StatusServiceUnavailable,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
