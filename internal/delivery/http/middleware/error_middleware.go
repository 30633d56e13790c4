package middleware

import (
	"errors"
	"net/http"

	"hospital-recruitment-backend/internal/delivery/http/response"
	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/pkg/apperror"
	"hospital-recruitment-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		switch {
		case errors.As(err, &appErr):
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed", "path", c.FullPath(), "status", appErr.Code, "error", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
		case errors.Is(err, domain.ErrNotFound):
			response.Error(c, http.StatusNotFound, "Record not found", nil)
		case errors.Is(err, domain.ErrAllSourcesFailed):
			logger.Log.Error("All intake sources failed", "error", err)
			response.Error(c, http.StatusBadGateway, "failed to load applicants", nil)
		default:
			// Internal details stay in the log
			logger.Log.Error("Internal Server Error", "path", c.FullPath(), "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}
