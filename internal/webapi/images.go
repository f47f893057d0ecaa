package webapi

import (
	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/completion"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/webserver"
)

type generateImagePayload struct {
	ProductId   int64  `json:"product_id,string"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type generateImageResult struct {
	Image   string   `json:"image"`
	History []string `json:"history"`
}

func (h *Handlers) generateImage(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	var payload generateImagePayload
	if err := c.Bind(&payload); err != nil || payload.ProductId == 0 {
		return webserver.FailErr(c, errs.Validation("product_id is required"))
	}

	req := completion.ImageRequest{
		Prompt:      payload.Prompt,
		AspectRatio: payload.AspectRatio,
	}
	uri, history, err := h.orchestrator.GenerateProductImage(
		c.Request().Context(), userID, payload.ProductId, req)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, generateImageResult{Image: uri, History: history})
}

type optimizePromptPayload struct {
	ProductId int64  `json:"product_id,string"`
	Prompt    string `json:"prompt"`
}

func (h *Handlers) optimizeImagePrompt(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	var payload optimizePromptPayload
	if err := c.Bind(&payload); err != nil || payload.ProductId == 0 {
		return webserver.FailErr(c, errs.Validation("product_id is required"))
	}

	optimized, err := h.orchestrator.OptimizeImagePrompt(
		c.Request().Context(), userID, payload.ProductId, payload.Prompt)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, map[string]string{"prompt": optimized})
}
