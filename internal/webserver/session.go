package webserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
)

// SessionClaims is the JWT payload carried in the auth cookie. UserId is a
// string to survive JSON number precision limits on snowflake IDs.
type SessionClaims struct {
	UserId string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// CurrentSession extracts the verified claims set by the JWT middleware.
func CurrentSession(c echo.Context) (*SessionClaims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, errs.Unauthorized("no session")
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, errs.Unauthorized("invalid session")
	}
	return claims, nil
}

// CurrentUserID returns the authenticated user's ID.
func CurrentUserID(c echo.Context) (int64, error) {
	claims, err := CurrentSession(c)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(claims.UserId, 10, 64)
	if err != nil {
		return 0, errs.Unauthorized("invalid session subject")
	}
	return id, nil
}

// SetSessionCookie signs a session token for the user and sets the auth
// cookie.
func SetSessionCookie(c echo.Context, user *domain.SysUser) error {
	cfg := server.appCtx.Config().Web
	expire := time.Duration(cfg.JwtExpire) * time.Hour
	if expire <= 0 {
		expire = 168 * time.Hour
	}

	claims := &SessionClaims{
		UserId: strconv.FormatInt(user.ID, 10),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(expire.Seconds()),
	})
	return nil
}

// ClearSessionCookie drops the auth cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
