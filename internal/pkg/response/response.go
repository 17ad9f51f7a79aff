package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CodeOK business code of a successful response
const CodeOK = 0

// Response envelope for the plain HTTP endpoints next to /mcp
type Response struct {
	Code    int    `json:"code"`              // 0 on success, else the HTTP status
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// Success writes data with 200
func Success(c *gin.Context, data any) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Code: CodeOK,
		Data: data,
	})
}

// Error writes message with httpStatus
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		Code:    httpStatus,
		Message: message,
		Data:    struct{}{},
	})
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// MethodNotAllowed 405
func MethodNotAllowed(c *gin.Context, message string) {
	Error(c, http.StatusMethodNotAllowed, message)
}
