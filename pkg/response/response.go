package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the failure shape shared by every endpoint: an HTTP status
// plus a short message. Details carries field-level validation errors when
// present.
type ErrorBody struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// Err writes an error body to the context.
func Err(c *gin.Context, status int, message string, details interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, ErrorBody{
		Message:   message,
		RequestID: c.GetString("request_id"),
		Details:   details,
	})
}

// AbortErr writes an error body and aborts the handler chain.
func AbortErr(c *gin.Context, status int, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Message:   message,
		RequestID: c.GetString("request_id"),
		Details:   details,
	})
}
