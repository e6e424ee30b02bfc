package response

import "github.com/gin-gonic/gin"

// Closed code table mapped from the service error set. Clients switch on
// code; message is human-readable and never carries internal error detail.
const (
	CodeOK                = 0
	CodeBadRequest        = 40000
	CodeContentTooShort   = 40001
	CodeUnsupportedFormat = 40002
	CodeFetchError        = 40003
	CodeUnauthorized      = 40100
	CodeConflict          = 40900
	CodeInternalServer    = 50000
	CodeUpstreamFailure   = 50200
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
