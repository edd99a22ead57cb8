package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the usual shape of the data field.
type Response map[string]interface{}

// Business error codes carried next to the HTTP status.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
	CodeStorage      = 50701
)

// Success writes {code: 0, data}.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes {code, message}.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// Partial reports a change that was applied in memory but could not be
// saved: {code, message, data}.
func Partial(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusInsufficientStorage, gin.H{
		"code":    CodeStorage,
		"message": msg,
		"data":    data,
	})
}
