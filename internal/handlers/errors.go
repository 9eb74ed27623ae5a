// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

// respondError maps a service error onto an API response. resource names the
// i18n prefix used for not-found messages.
func respondError(c *gin.Context, err error, resource string) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
	case errors.Is(err, services.ErrDuplicateEmail):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrNoSession):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthNoSession))
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrEmptyCart):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartEmpty), nil)
	case errors.Is(err, services.ErrInsufficientFunds):
		utils.PaymentRequiredResponse(c, i18n.T(lang, i18n.KeyCartInsufficientFunds))
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, blobstore.ErrTooLarge):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTooLarge), err.Error())
	case errors.Is(err, blobstore.ErrUnsupported):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUnsupported), err.Error())
	default:
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes and validates the body, writing the error response on
// failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// currentUserID returns the session user set by SessionRequired.
func currentUserID(c *gin.Context) (string, bool) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return userID, ok
}

func isAdmin(c *gin.Context) bool {
	role, _ := utils.GetUserRoleFromContext(c)
	return role == string(models.RoleAdmin)
}
