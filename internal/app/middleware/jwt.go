package middleware

import (
	"errors"
	"strings"

	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/error/code"
	"gbr-security-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authentication
const (
	ContextSession = "session"
	ContextUser    = "user"
	ContextUserID  = "userID"
)

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// Authentication 验证 Bearer 令牌并恢复会话
func Authentication(sessions services.InterfaceSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			response.AbortWithFail(c, code.ErrTokenInvalid)
			return
		}

		session, err := sessions.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrInvalidToken):
			response.AbortWithFail(c, code.ErrTokenInvalid)
			return
		case errors.Is(err, services.ErrSessionNotFound):
			response.AbortWithFail(c, code.ErrSessionNotFound)
			return
		default:
			response.AbortWithFail(c, code.ErrSessionStore)
			return
		}

		c.Set(ContextSession, session)
		c.Set(ContextUser, session.User)
		c.Set(ContextUserID, session.User.ID)
		c.Next()
	}
}

// CurrentSession returns the session stored by Authentication
func CurrentSession(c *gin.Context) (*services.Session, bool) {
	value, exists := c.Get(ContextSession)
	if !exists {
		return nil, false
	}
	session, ok := value.(*services.Session)
	return session, ok
}
