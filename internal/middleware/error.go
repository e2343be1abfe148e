package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorHandler writes the last error recorded with c.Error as a JSON response.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := translate(err)
		if status == http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		c.JSON(status, body)
	}
}

func translate(err error) (int, ErrorResponse) {
	var (
		verr      *service.ValidationError
		fieldErrs validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field}
	case errors.As(err, &fieldErrs):
		fe := fieldErrs[0]
		return http.StatusBadRequest, ErrorResponse{Error: fieldMessage(fe), Field: fe.Field()}
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, ErrorResponse{Error: "malformed JSON body"}
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid value for %s", typeErr.Field), Field: typeErr.Field}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, ErrorResponse{Error: err.Error()}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, ErrorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("ensure this field has exactly %s characters", fe.Param())
	case "hexcolor":
		return "enter a valid hex color, e.g. #49B64E"
	case "slug":
		return "enter a valid slug consisting of letters, numbers, underscores or hyphens"
	case "username":
		return "enter a valid username; it may contain letters, digits and @/./+/-/_ only"
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}
