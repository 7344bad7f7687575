package handlers

import (
	"unipool/internal/utils"
	"unipool/internal/validators"

	"github.com/gin-gonic/gin"
)

// decodeJSON binds the request body into req, writing a 400 when it is not
// valid JSON for the target type.
func decodeJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return false
	}
	return true
}

// validationFailed writes the field errors, if any, and reports whether it did.
func validationFailed(c *gin.Context, errs validators.ValidationErrors) bool {
	if len(errs) == 0 {
		return false
	}
	utils.ValidationErrorResponse(c, errs.Details())
	return true
}
