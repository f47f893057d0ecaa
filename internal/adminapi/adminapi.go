// Package adminapi exposes the operator surface: user management, cross-user
// product views, and runtime settings.
package adminapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/app"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/store"
	"github.com/launchpadhq/launchpad/internal/webserver"
	"github.com/launchpadhq/launchpad/pkg/common"
	"go.uber.org/zap"
)

type Handlers struct {
	appCtx   app.AppContext
	users    store.UserRepository
	products store.ProductRepository
}

func NewHandlers(appCtx app.AppContext, users store.UserRepository, products store.ProductRepository) *Handlers {
	return &Handlers{appCtx: appCtx, users: users, products: products}
}

func (h *Handlers) Register() {
	webserver.AdminGET("/users", h.listUsers)
	webserver.AdminPUT("/users/:id", h.updateUser)
	webserver.AdminGET("/products", h.listProducts)
	webserver.AdminDELETE("/products/:id", h.deleteProduct)
	webserver.AdminGET("/settings/:category/:name", h.getSetting)
	webserver.AdminPUT("/settings/:category/:name", h.putSetting)
}

func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errs.Validation("invalid id")
	}
	return id, nil
}

func (h *Handlers) listUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, users)
}

type updateUserPayload struct {
	Credits *int64  `json:"credits"`
	Role    *string `json:"role"`
	Status  *string `json:"status"`
}

// updateUser applies operator adjustments. Credits set here is an absolute
// overwrite, not a grant.
func (h *Handlers) updateUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	var payload updateUserPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.FailErr(c, errs.Validation("invalid request body"))
	}

	values := map[string]interface{}{}
	if payload.Credits != nil {
		if *payload.Credits < 0 {
			return webserver.FailErr(c, errs.Validation("credits cannot be negative"))
		}
		values["credits"] = *payload.Credits
	}
	if payload.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*payload.Role))
		if role != domain.RoleStandard && role != domain.RoleAdmin {
			return webserver.FailErr(c, errs.Validation("unknown role"))
		}
		values["role"] = role
	}
	if payload.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*payload.Status))
		if status != common.ENABLED && status != common.DISABLED {
			return webserver.FailErr(c, errs.Validation("unknown status"))
		}
		values["status"] = status
	}
	if len(values) == 0 {
		return webserver.FailErr(c, errs.Validation("nothing to update"))
	}

	if err := h.users.Updates(c.Request().Context(), id, values); err != nil {
		return webserver.FailErr(c, err)
	}
	zap.L().Info("admin updated user", zap.Int64("user_id", id))
	return webserver.OK(c, map[string]interface{}{"ok": true})
}

func (h *Handlers) listProducts(c echo.Context) error {
	items, err := h.products.ListAll(c.Request().Context())
	if err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, items)
}

func (h *Handlers) deleteProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	if err := h.products.Delete(c.Request().Context(), id); err != nil {
		return webserver.FailErr(c, err)
	}
	zap.L().Info("admin deleted product", zap.Int64("product_id", id))
	return webserver.OK(c, map[string]interface{}{"ok": true})
}

func (h *Handlers) getSetting(c echo.Context) error {
	value := h.appCtx.GetSettingsStringValue(c.Param("category"), c.Param("name"))
	return webserver.OK(c, map[string]string{"value": value})
}

type settingPayload struct {
	Value string `json:"value"`
}

func (h *Handlers) putSetting(c echo.Context) error {
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.FailErr(c, errs.Validation("invalid request body"))
	}
	if err := h.appCtx.SetSettingsValue(c.Param("category"), c.Param("name"), payload.Value); err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, map[string]interface{}{"ok": true})
}
