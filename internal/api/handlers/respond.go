package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

// logFailure logs err at a level matching the status it maps to.
func logFailure(logger *zap.Logger, c *gin.Context, msg string, status int, err error) {
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error(msg, fields...)
		return
	}
	logger.Warn(msg, fields...)
}

// userErrorsOf returns the platform's userErrors carried by err, if any.
func userErrorsOf(err error) ([]apperrors.UserError, bool) {
	var userErrs *apperrors.ErrUserErrors
	if errors.As(err, &userErrs) {
		return userErrs.Errors, true
	}
	return nil, false
}
