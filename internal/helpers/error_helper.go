package helpers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const invalidInputMessage = "Invalid input. Please check your fields."

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPStatus maps an error kind to its response status. Business conflicts
// are reported as 400.
func HTTPStatus(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindConflict:
		return http.StatusBadRequest
	case apperror.KindAuthentication:
		return http.StatusUnauthorized
	case apperror.KindAuthorization:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithError aborts the request with the error envelope. Errors that
// are not *apperror.Error are logged and reported as persistence errors.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperror.From(err, "Internal server error")
	status := HTTPStatus(appErr.Kind)

	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   string(appErr.Kind),
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// RespondWithBindError reports a request body or form that failed to bind.
// Only the names of failing fields reach the client; the raw error is logged.
func RespondWithBindError(c *gin.Context, err error) {
	log.Printf("%s %s: bind: %v", c.Request.Method, c.Request.URL.Path, err)
	RespondWithError(c, apperror.Validation("invalid_request", bindErrorMessage(err)))
}

func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidInputMessage
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Sprintf("Invalid input. Please check your fields: %s.", strings.Join(fields, ", "))
}
