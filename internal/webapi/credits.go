package webapi

import (
	"io"

	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/webserver"
)

func (h *Handlers) getCredits(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	balance, err := h.ledger.Balance(c.Request().Context(), userID)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, map[string]int64{"credits": balance})
}

type purchasePayload struct {
	Credits int64 `json:"credits"`
}

func (h *Handlers) purchaseCredits(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	var payload purchasePayload
	if err := c.Bind(&payload); err != nil {
		return webserver.FailErr(c, errs.Validation("invalid request body"))
	}

	url, err := h.billing.CreateCheckout(c.Request().Context(), userID, payload.Credits)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, map[string]string{"url": url})
}

// stripeWebhook receives provider deliveries. It is public; authenticity
// comes from the signature header, not a session.
func (h *Handlers) stripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return webserver.FailErr(c, errs.Validation("could not read webhook payload"))
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.billing.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, map[string]interface{}{"received": true})
}
