package webapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/webserver"
	"github.com/launchpadhq/launchpad/pkg/common"
	"go.uber.org/zap"
)

type registerPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResult struct {
	Id      string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Credits int64  `json:"credits"`
}

func sessionView(user *domain.SysUser) sessionResult {
	return sessionResult{
		Id:      strconv.FormatInt(user.ID, 10),
		Email:   user.Email,
		Role:    user.Role,
		Credits: user.Credits,
	}
}

func (h *Handlers) register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.FailErr(c, errs.Validation("invalid request body"))
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || !strings.Contains(email, "@") {
		return webserver.FailErr(c, errs.Validation("a valid email is required"))
	}
	if len(payload.Password) < 8 {
		return webserver.FailErr(c, errs.Validation("password must be at least 8 characters"))
	}

	ctx := c.Request().Context()
	if _, err := h.users.GetByEmail(ctx, email); err == nil {
		return webserver.FailErr(c, errs.Validation("this email is already registered"))
	}

	hashed, err := common.HashPassword(payload.Password)
	if err != nil {
		return webserver.FailErr(c, errs.Internal("password hash failed", err))
	}

	user := &domain.SysUser{
		ID:        common.UUIDint64(),
		Email:     email,
		Password:  hashed,
		Role:      domain.RoleStandard,
		Credits:   h.appCtx.RegisterBonus(),
		Status:    common.ENABLED,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		// The unique index on email closes the check-then-create race.
		return webserver.FailErr(c, errs.Validation("this email is already registered"))
	}

	if err := webserver.SetSessionCookie(c, user); err != nil {
		return webserver.FailErr(c, errs.Internal("session issue failed", err))
	}
	h.writeUserLog(email, c.RealIP(), "register", "account created")
	zap.L().Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", email))
	return webserver.OK(c, sessionView(user))
}

func (h *Handlers) login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.FailErr(c, errs.Validation("invalid request body"))
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	ctx := c.Request().Context()
	user, err := h.users.GetByEmail(ctx, email)
	if err != nil || !common.CheckPassword(user.Password, payload.Password) {
		return webserver.FailErr(c, errs.Unauthorized("invalid email or password"))
	}
	if user.Status != common.ENABLED {
		return webserver.FailErr(c, errs.Forbidden("this account is disabled"))
	}

	if err := webserver.SetSessionCookie(c, user); err != nil {
		return webserver.FailErr(c, errs.Internal("session issue failed", err))
	}
	if err := h.users.TouchLogin(ctx, user.ID); err != nil {
		zap.L().Warn("login time update failed", zap.Error(err))
	}
	h.writeUserLog(email, c.RealIP(), "login", "signed in")
	return webserver.OK(c, sessionView(user))
}

func (h *Handlers) logout(c echo.Context) error {
	webserver.ClearSessionCookie(c)
	return webserver.OK(c, map[string]interface{}{"ok": true})
}
