package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"buyer_portal_backend/internal/auth/service"
	"buyer_portal_backend/internal/auth/transport"
	"buyer_portal_backend/platform/config"
	"buyer_portal_backend/platform/httpkit"
	"buyer_portal_backend/platform/validator"
)

type Handler struct {
	svc    *service.Service
	val    *validator.Validator
	cookie config.CookieConfig
}

const msgInvalidRequest = "invalid request"

func New(svc *service.Service, val *validator.Validator, cookie config.CookieConfig) *Handler {
	return &Handler{svc: svc, val: val, cookie: cookie}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
}

// Login finds or creates the user and issues the identity cookie.
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	c.SetCookie(
		h.cookie.GetIdentityCookieName(),
		user.ID,
		int(h.cookie.GetIdentityCookieTTL().Seconds()),
		"/",
		"",
		h.cookie.GetIdentityCookieSecure(),
		true, // HttpOnly
	)

	httpkit.OK(c, transport.LoginResponse{User: user})
}

// Logout clears the identity cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(
		h.cookie.GetIdentityCookieName(),
		"",
		-1,
		"/",
		"",
		h.cookie.GetIdentityCookieSecure(),
		true,
	)
	httpkit.OK(c, gin.H{"ok": true})
}
