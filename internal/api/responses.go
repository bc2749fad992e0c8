// Package api defines the JSON envelopes shared by every HTTP handler.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitness_backend/internal/shared/validation"
)

// DetailResponse is the body used for both informational messages and
// non-field errors, e.g. {"detail": "Not found."}.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// Common detail messages.
const (
	DetailNotFound           = "Not found."
	DetailNotAuthenticated   = "Authentication credentials were not provided."
	DetailInvalidToken       = "Given token not valid for any token type"
	DetailInvalidCredentials = "No active account found with the given credentials"
	DetailInternal           = "A server error occurred."
)

// AbortDetail aborts the request with the given status and detail message.
func AbortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, DetailResponse{Detail: detail})
}

// AbortValidation aborts the request with a 400 and field-level errors.
func AbortValidation(c *gin.Context, errs validation.Errors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errs)
}
