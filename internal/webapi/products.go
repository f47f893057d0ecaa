package webapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/pipeline"
	"github.com/launchpadhq/launchpad/internal/webserver"
)

// paramID parses the :id path segment.
func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errs.Validation("invalid product id")
	}
	return id, nil
}

func (h *Handlers) listProducts(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	items, err := h.products.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	if items == nil {
		items = []domain.ProductListItem{}
	}
	return webserver.OK(c, items)
}

type productDetail struct {
	Product   interface{}            `json:"product"`
	Stages    []pipeline.StageStatus `json:"stages"`
	NextStage *pipeline.Stage        `json:"next_stage"`
	Images    []string               `json:"generated_images"`
}

func (h *Handlers) getProduct(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	product, err := h.products.GetOwned(c.Request().Context(), id, userID)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	stages, next := h.orchestrator.Progress(product)
	return webserver.OK(c, productDetail{
		Product:   product,
		Stages:    stages,
		NextStage: next,
		Images:    pipeline.ImageHistory(product),
	})
}

type renamePayload struct {
	Name string `json:"name"`
}

func (h *Handlers) renameProduct(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	var payload renamePayload
	if err := c.Bind(&payload); err != nil {
		return webserver.FailErr(c, errs.Validation("invalid request body"))
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return webserver.FailErr(c, errs.Validation("name is required"))
	}

	if err := h.products.Rename(c.Request().Context(), id, userID, name); err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, map[string]interface{}{"ok": true})
}

func (h *Handlers) deleteProduct(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	if err := h.products.DeleteOwned(c.Request().Context(), id, userID); err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, map[string]interface{}{"ok": true})
}
