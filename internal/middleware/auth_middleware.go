package middleware

import (
	"context"
	"strings"

	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/farellandr/ticketbook/internal/helpers"
	"github.com/farellandr/ticketbook/internal/services"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

var (
	errMissingToken = apperror.Authentication("not_authenticated", "Not authenticated")
	errNotAdmin     = apperror.Authorization("admin_required", "Not enough permissions")
)

type tokenAuthorizer interface {
	Authorize(ctx context.Context, token string) (*services.Principal, error)
}

// JWTAuthMiddleware requires a valid bearer token and stores the resolved
// principal on the context.
func JWTAuthMiddleware(identity tokenAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			helpers.RespondWithError(c, errMissingToken)
			return
		}

		principal, err := identity.Authorize(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			helpers.RespondWithError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// AdminOnly must run after JWTAuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			helpers.RespondWithError(c, errMissingToken)
			return
		}
		if !principal.IsAdmin {
			helpers.RespondWithError(c, errNotAdmin)
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) *services.Principal {
	principal, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	return principal.(*services.Principal)
}
