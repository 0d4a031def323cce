package controllers

import (
	"errors"

	"gbr-security-service/internal/app/middleware"
	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/error/code"
	"gbr-security-service/internal/error/response"
	"gbr-security-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SuccessResponse 表示成功响应
type SuccessResponse struct {
	Code    int         `json:"code" example:"100000"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"102000"`
	Message string      `json:"message" example:"property not found"`
	Data    interface{} `json:"data"`
}

// errorCodes maps domain errors to response codes
var errorCodes = []struct {
	err  error
	code int
}{
	{services.ErrInvalidToken, code.ErrTokenInvalid},
	{services.ErrSessionNotFound, code.ErrSessionNotFound},
	{services.ErrPropertyNotFound, code.ErrPropertyNotFound},
	{services.ErrRegistryUnavailable, code.ErrDatabase},
	{services.ErrInvalidTargetStatus, code.ErrInvalidTargetStatus},
	{services.ErrTransitionInProgress, code.ErrTransitionInProgress},
	{services.ErrStatusChangeFailed, code.ErrStatusChangeFailed},
	{services.ErrInvalidCategory, code.ErrInvalidCategory},
	{services.ErrCallNotFound, code.ErrCallNotFound},
}

// fail writes the response for a service error; unmapped errors are logged
func fail(c *gin.Context, err error) {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			response.Fail(c, m.code, nil)
			return
		}
	}

	logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	response.ServerError(c)
}

// currentUserID returns the id of the authenticated user, empty when anonymous
func currentUserID(c *gin.Context) string {
	if session, ok := middleware.CurrentSession(c); ok {
		return session.User.ID
	}
	return ""
}
