package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/launchpadhq/launchpad/internal/app"
	"github.com/launchpadhq/launchpad/internal/domain"
	"go.uber.org/zap"
)

const TokenCookieName = "auth_token"

var server *WebServer

// WebServer hosts the HTTP surface: public routes, JWT-protected API routes,
// and admin routes layered on a role check.
type WebServer struct {
	root   *echo.Echo
	pub    *echo.Group
	api    *echo.Group
	admin  *echo.Group
	appCtx app.AppContext
}

// Init builds the global web server instance.
func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(ZapLoggerMiddleware())
	e.Use(middleware.BodyLimit("16M"))

	secret := []byte(appCtx.Config().Web.Secret)
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		SigningKey:  secret,
		TokenLookup: "cookie:" + TokenCookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in first", nil)
		},
	})

	pub := e.Group("/api")
	api := e.Group("/api", jwtMiddleware)
	admin := e.Group("/api/admin", jwtMiddleware, RequireAdmin)

	server = &WebServer{
		root:   e,
		pub:    pub,
		api:    api,
		admin:  admin,
		appCtx: appCtx,
	}
	return server
}

// Instance returns the global web server (nil before Init).
func Instance() *WebServer {
	return server
}

// Listen starts serving and blocks.
func Listen() error {
	cfg := server.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return server.root.Start(addr)
}

// Echo exposes the underlying router (used in tests).
func Echo() *echo.Echo {
	return server.root
}

// AppCtx returns the application context bound at Init.
func AppCtx() app.AppContext {
	return server.appCtx
}

// ZapLoggerMiddleware logs one line per request through the global zap logger.
func ZapLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(start)))
			return err
		}
	}
}

// Public route registration

func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}

// Authenticated route registration

func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// Admin route registration

func AdminGET(path string, h echo.HandlerFunc) {
	server.admin.GET(path, h)
}

func AdminPUT(path string, h echo.HandlerFunc) {
	server.admin.PUT(path, h)
}

func AdminDELETE(path string, h echo.HandlerFunc) {
	server.admin.DELETE(path, h)
}

// RequireAdmin rejects non-admin sessions before the handler runs.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := CurrentSession(c)
		if err != nil {
			return Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in first", nil)
		}
		if claims.Role != domain.RoleAdmin {
			return Fail(c, http.StatusForbidden, "FORBIDDEN", "Admin access required", nil)
		}
		return next(c)
	}
}
