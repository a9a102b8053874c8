package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Error   string `json:"error"`   // machine code (codes.go)
	Message string `json:"message"` // Persian user-facing message
}

// RespondWithError writes the standard error envelope
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Shortcuts for the common cases

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "برای ادامه باید وارد حساب کاربری شوید"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

// Conflict reports a duplicate-unique-field condition. Duplicates come
// back as 400, not 409; the web client treats both the same way.
func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "خطایی در سرور رخ داد. لطفاً بعداً دوباره تلاش کنید"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ParseAndRespond classifies err via ParseError and writes the envelope.
// statusCode is the fallback for unclassified errors; recognized not-found
// and duplicate conditions override it.
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	switch info.Code {
	case ResourceNotFound, AdNotFound, ShopNotFound, ChatRoomNotFound:
		statusCode = http.StatusNotFound
	case ResourceAlreadyExists, AuthPhoneExists, AuthUsernameExists, ShopAlreadyFollowing:
		statusCode = http.StatusBadRequest
	}
	RespondWithError(c, statusCode, info.Code, info.Message)
}
