package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/core/cache"
	"userhub/internal/service"
	"userhub/internal/transport/http/ez"
	"userhub/internal/transport/http/middleware"
)

// AdminHandler is the back-office surface: listing with search, admin
// toggling and deletion. The whole group sits behind the admin JWT
// middleware; the actions only carry the self-delete guard on top.
type AdminHandler struct {
	svc   *service.UserService
	cache *cache.Cache // nil disables profile invalidation
	log   *zap.Logger
}

func NewAdminHandler(svc *service.UserService, c *cache.Cache, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, cache: c, log: log}
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	// --- GET /admin/v1/users  listing with search ---
	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // fuzzy match on email/name
		WithDeleted bool   `form:"with_deleted"` // include soft-deleted rows
	}
	type row struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		Admin     bool      `json:"admin"`
		CreatedAt time.Time `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}

	ez.RegisterAction(e, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			us, total, err := h.svc.SearchUsers(in.Q, in.WithDeleted, in.Offset, in.Limit)
			if err != nil {
				return listOut{}, ez.Internal("list users failed", err)
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.Email, Name: u.Name, Admin: u.Admin, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- POST /admin/v1/users/:id/toggle-admin ---
	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/toggle-admin",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, ez.BadRequest("missing id")
			}
			u, err := h.svc.ToggleAdmin(id)
			if errors.Is(err, service.ErrNotFound) {
				return nil, ez.NotFound("user not found")
			}
			if err != nil {
				return nil, ez.Internal("toggle admin failed", err)
			}
			h.log.Info("admin flag toggled",
				zap.String("uid", u.ID),
				zap.Bool("admin", u.Admin),
				zap.String("actor", c.GetString(middleware.KeyUserID)),
			)
			return gin.H{"id": u.ID, "admin": u.Admin}, nil
		},
	})

	// --- DELETE /admin/v1/users/:id  soft delete, never self ---
	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, ez.BadRequest("missing id")
			}
			actor := c.GetString(middleware.KeyUserID)
			err := h.svc.Delete(actor, id)
			switch {
			case errors.Is(err, service.ErrSelfDelete):
				return nil, ez.Forbidden("cannot delete yourself")
			case errors.Is(err, service.ErrNotFound):
				return nil, ez.NotFound("user not found")
			case err != nil:
				return nil, ez.Internal("delete user failed", err)
			}
			if h.cache != nil {
				h.cache.Invalidate(c.Request.Context(), profileKey(id))
			}
			h.log.Info("user deleted", zap.String("uid", id), zap.String("actor", actor))
			return gin.H{"id": id}, nil
		},
	})
}
