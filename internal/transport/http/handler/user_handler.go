package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/core/auth"
	"userhub/internal/core/cache"
	"userhub/internal/domain"
	"userhub/internal/service"
	"userhub/internal/transport/http/middleware"
	resp "userhub/internal/transport/http/response"
)

type UserHandler struct {
	svc        *service.UserService
	jwter      *auth.JWTer
	cache      *cache.Cache // nil disables profile caching
	profileTTL time.Duration
	perPage    int
	log        *zap.Logger
}

func NewUserHandler(svc *service.UserService, jwter *auth.JWTer, c *cache.Cache, profileTTL time.Duration, perPage int, log *zap.Logger) *UserHandler {
	if perPage < 1 {
		perPage = 30
	}
	return &UserHandler{svc: svc, jwter: jwter, cache: c, profileTTL: profileTTL, perPage: perPage, log: log}
}

type candidateIn struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (in candidateIn) toCandidate() domain.Candidate {
	return domain.Candidate{
		Name:                 in.Name,
		Email:                in.Email,
		Password:             in.Password,
		PasswordConfirmation: in.PasswordConfirmation,
	}
}

type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewOf(u *domain.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Admin: u.Admin, CreatedAt: u.CreatedAt}
}

// publicProfile is what an unauthenticated viewer may see.
type publicProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type sessionOut struct {
	Token         string   `json:"token"`
	RememberToken string   `json:"rememberToken"`
	User          userView `json:"user"`
}

func (h *UserHandler) MountAPI(public, authed *gin.RouterGroup) {
	public.POST("/signup", h.signup)
	public.GET("/users/:id", h.show)

	authed.GET("/users", h.index)
	authed.PATCH("/users/:id", h.update)
	authed.GET("/me", h.me)
}

// signup creates the user and signs them in: success returns the same
// session payload as login. Invalid input persists nothing.
func (h *UserHandler) signup(c *gin.Context) {
	var in candidateIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, fieldErrs, err := h.svc.Signup(in.toCandidate())
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "signup failed"))
		return
	}
	if fieldErrs.Has() {
		c.JSON(http.StatusOK, resp.Invalid(fieldErrs))
		return
	}
	out, err := h.startSession(u)
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "issue token failed"))
		return
	}
	h.log.Info("user signed up", zap.String("uid", u.ID))
	c.JSON(http.StatusOK, resp.OK(out))
}

func (h *UserHandler) startSession(u *domain.User) (sessionOut, error) {
	tok, err := h.jwter.Issue(u.ID, u.Admin)
	if err != nil {
		return sessionOut{}, err
	}
	remember, err := h.svc.RotateRememberToken(u)
	if err != nil {
		return sessionOut{}, err
	}
	return sessionOut{Token: tok, RememberToken: remember, User: viewOf(u)}, nil
}

// show is the public profile page: name only, no auth required.
func (h *UserHandler) show(c *gin.Context) {
	id := c.Param("id")

	fetch := func(context.Context) (*publicProfile, error) {
		u, err := h.svc.Get(id)
		if err != nil {
			return nil, err
		}
		return &publicProfile{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}, nil
	}

	var p *publicProfile
	var err error
	if h.cache != nil {
		p, err = cache.GetOrLoadJSON(h.cache, c.Request.Context(), profileKey(id), h.profileTTL, fetch)
	} else {
		p, err = fetch(c.Request.Context())
	}
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusOK, resp.Error(resp.CodeNotFound, "user not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "load profile failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(p))
}

// index lists users one fixed-size page at a time. Rows carry a deletable
// flag so an admin viewer gets a delete affordance for every row except
// their own; non-admin viewers never see one.
func (h *UserHandler) index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pg, err := h.svc.List(page, h.perPage)
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "list users failed"))
		return
	}

	viewerID := c.GetString(middleware.KeyUserID)
	viewerAdmin := c.GetBool(middleware.KeyIsAdmin)

	type row struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Deletable bool   `json:"deletable"`
	}
	rows := make([]row, 0, len(pg.Users))
	for _, u := range pg.Users {
		rows = append(rows, row{ID: u.ID, Name: u.Name, Deletable: viewerAdmin && u.ID != viewerID})
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{
		"users":      rows,
		"total":      pg.Total,
		"page":       pg.Page,
		"perPage":    pg.PerPage,
		"totalPages": pg.TotalPages,
	}))
}

// update is the profile edit: self only, unless the caller is an admin.
func (h *UserHandler) update(c *gin.Context) {
	id := c.Param("id")
	viewerID := c.GetString(middleware.KeyUserID)
	if id != viewerID && !c.GetBool(middleware.KeyIsAdmin) {
		c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
		return
	}

	var in candidateIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, fieldErrs, err := h.svc.Update(id, in.toCandidate())
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusOK, resp.Error(resp.CodeNotFound, "user not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "update failed"))
		return
	}
	if fieldErrs.Has() {
		c.JSON(http.StatusOK, resp.Invalid(fieldErrs))
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), profileKey(id))
	}
	c.JSON(http.StatusOK, resp.OK(viewOf(u)))
}

func (h *UserHandler) me(c *gin.Context) {
	uid := c.GetString(middleware.KeyUserID)
	u, err := h.svc.Get(uid)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusOK, resp.Error(resp.CodeNotFound, "user not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "load user failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(viewOf(u)))
}

func profileKey(id string) string { return fmt.Sprintf("user:profile:%s", id) }
