package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/errs"
	"go.uber.org/zap"
)

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type pagedBody struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// OK writes a 200 JSON response.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// Paged writes a paginated list response.
func Paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedBody{
		Items: items, Total: total, Page: page, PageSize: pageSize,
	})
}

// Fail writes an explicit error response.
func Fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, errorBody{Code: code, Message: message, Details: details})
}

var kindStatus = map[errs.Kind]int{
	errs.KindUnauthorized:        http.StatusUnauthorized,
	errs.KindForbidden:           http.StatusForbidden,
	errs.KindNotFound:            http.StatusNotFound,
	errs.KindValidation:          http.StatusBadRequest,
	errs.KindMissingContext:      http.StatusBadRequest,
	errs.KindInsufficientCredits: http.StatusPaymentRequired,
	errs.KindAlreadyInProgress:   http.StatusConflict,
	errs.KindUpstreamGeneration:  http.StatusBadGateway,
	errs.KindInternal:            http.StatusInternalServerError,
}

// FailErr maps a classified application error to its HTTP response. Internal
// details never leak to the client.
func FailErr(c echo.Context, err error) error {
	kind := errs.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := errs.MessageOf(err)
	if kind == errs.KindInternal {
		zap.L().Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		message = "Internal server error"
	}
	return Fail(c, status, string(kind), message, nil)
}
