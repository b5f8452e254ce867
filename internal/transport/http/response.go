package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}
	c.JSON(httpStatus, APIResponse{
		Success: true,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	})
}

func RespondError(c *gin.Context, httpStatus int, message string, data interface{}) {
	c.JSON(httpStatus, APIResponse{
		Success: false,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	})
}

// RespondDomainError maps the error kind taxonomy onto HTTP statuses.
func RespondDomainError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case platformerrors.IsKind(err, platformerrors.KindValidation):
		status = http.StatusBadRequest
	case platformerrors.IsKind(err, platformerrors.KindCapability):
		status = http.StatusUnprocessableEntity
	case platformerrors.IsKind(err, platformerrors.KindVendor):
		status = http.StatusBadGateway
	case platformerrors.IsKind(err, platformerrors.KindStorage):
		status = http.StatusInternalServerError
	}
	RespondError(c, status, err.Error(), nil)
}
