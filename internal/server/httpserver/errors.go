package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	msgServerError      = "Server error"
	msgUserExists       = "User already exists"
	msgInvalidCreds     = "Invalid credentials"
	msgNoToken          = "No token, authorization denied"
	msgTokenExpired     = "Token has expired"
	msgTokenInvalid     = "Token is invalid"
	msgUserNotFound     = "User not found"
	msgAccessDenied     = "Access denied"
	msgFileNotFound     = "File not found"
	msgFileTooLarge     = "File too large"
	msgTooManyRequests  = "Too many requests"
	msgNoFileUploaded   = "No file uploaded"
	msgInvalidBody      = "Invalid request body"
	msgFileDeleted      = "File deleted successfully"
	msgInvalidMultipart = "Invalid upload"
)

// errorResponse maps a service error to a status and a client-safe message.
// Order matters: the token reasons are checked before their parent
// ErrUnauthenticated.
func errorResponse(err error) (int, string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, msgInvalidBody
	case errors.Is(err, common.ErrEmailTaken):
		return http.StatusConflict, msgUserExists
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCreds
	case errors.Is(err, common.ErrNoToken):
		return http.StatusUnauthorized, msgNoToken
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, msgTokenExpired
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, msgTokenInvalid
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusUnauthorized, msgUserNotFound
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, msgTokenInvalid
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, msgAccessDenied
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, msgFileNotFound
	default:
		return http.StatusInternalServerError, msgServerError
	}
}

// abortWithError writes the mapped response and stops the chain. Server
// faults are logged with their cause; the client only sees the message.
func (s *HTTPServer) abortWithError(c *gin.Context, err error) {
	code, msg := errorResponse(err)
	l := requestLog(c, s.logger)
	if code >= http.StatusInternalServerError {
		l.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	} else {
		l.Debug(c.Request.Context(), "request rejected", "path", c.Request.URL.Path, "status", code, "error", err)
	}
	c.AbortWithStatusJSON(code, gin.H{"message": msg})
}
