package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/logger"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code.
// If it's not an AppError, it defaults to 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	var fieldErr *apperror.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fieldErr.Error(), Fields: fieldErr.Fields})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	logger.Named("http").Errorw("unhandled error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
