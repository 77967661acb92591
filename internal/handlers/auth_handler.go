package handlers

import (
	"net/http"

	"github.com/farellandr/ticketbook/internal/helpers"
	"github.com/farellandr/ticketbook/internal/middleware"
	"github.com/farellandr/ticketbook/internal/services"
	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginRequest is the OAuth2 password form; username carries the email.
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type AuthHandler struct {
	identity *services.IdentityService
}

func NewAuthHandler(identity *services.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	user, err := h.identity.Register(c.Request.Context(), req.Email, req.Password, req.IsAdmin)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	token, err := h.identity.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	user, err := h.identity.CurrentUser(c.Request.Context(), principal.UserID)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
