package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/core/auth"
	"userhub/internal/service"
	resp "userhub/internal/transport/http/response"
)

type SessionHandler struct {
	svc   *service.UserService
	jwter *auth.JWTer
	log   *zap.Logger
}

func NewSessionHandler(svc *service.UserService, jwter *auth.JWTer, log *zap.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, jwter: jwter, log: log}
}

func (h *SessionHandler) MountAPI(public, _ *gin.RouterGroup) {
	public.POST("/auth/login", h.login)
	public.POST("/auth/refresh", h.refresh)
}

type loginIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *SessionHandler) login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.svc.Authenticate(in.Email, in.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid credentials"))
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "login failed"))
		return
	}

	tok, err := h.jwter.Issue(u.ID, u.Admin)
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "issue token failed"))
		return
	}
	remember, err := h.svc.RotateRememberToken(u)
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "login failed"))
		return
	}
	h.log.Info("user signed in", zap.String("uid", u.ID))
	c.JSON(http.StatusOK, resp.OK(sessionOut{Token: tok, RememberToken: remember, User: viewOf(u)}))
}

type refreshIn struct {
	Email         string `json:"email" binding:"required"`
	RememberToken string `json:"remember_token" binding:"required"`
}

// refresh exchanges a remember token for a fresh JWT without rotating it.
func (h *SessionHandler) refresh(c *gin.Context) {
	var in refreshIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.svc.ExchangeRememberToken(in.Email, in.RememberToken)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid credentials"))
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "refresh failed"))
		return
	}
	tok, err := h.jwter.Issue(u.ID, u.Admin)
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "issue token failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{
		"token":     tok,
		"expiresIn": int(h.jwter.TTL / time.Second),
		"user":      viewOf(u),
	}))
}
