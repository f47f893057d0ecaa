package webapi

import (
	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/pipeline"
	"github.com/launchpadhq/launchpad/internal/webserver"
	"go.uber.org/zap"
)

type stageRunPayload struct {
	ProductId int64 `json:"product_id,string"`
}

type stageConfirmPayload struct {
	ProductId int64  `json:"product_id,string"`
	Content   string `json:"content"`
}

// runStage streams one stage's output as chunked plain text. Errors before
// the first chunk map to JSON error responses; once streaming has begun the
// connection is simply closed and the client falls back to the stored state.
func (h *Handlers) runStage(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	stage, err := pipeline.ParseStage(c.Param("stage"))
	if err != nil {
		return webserver.FailErr(c, err)
	}
	var payload stageRunPayload
	if err := c.Bind(&payload); err != nil || payload.ProductId == 0 {
		return webserver.FailErr(c, errs.Validation("product_id is required"))
	}

	resp := c.Response()
	streaming := false
	onChunk := func(chunk string) error {
		if !streaming {
			resp.Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")
			resp.Header().Set("X-Accel-Buffering", "no")
			resp.WriteHeader(200)
			streaming = true
		}
		if _, err := resp.Write([]byte(chunk)); err != nil {
			return err
		}
		resp.Flush()
		return nil
	}

	text, err := h.orchestrator.RunStage(
		c.Request().Context(), userID, payload.ProductId, stage, onChunk)
	if err != nil {
		if streaming {
			zap.L().Warn("stream aborted mid-flight",
				zap.Int64("product_id", payload.ProductId),
				zap.String("stage", string(stage)),
				zap.Error(err))
			return nil
		}
		return webserver.FailErr(c, err)
	}

	if !streaming {
		return c.String(200, text)
	}
	return nil
}

// confirmStage is the idempotent client-side save after a completed stream.
func (h *Handlers) confirmStage(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}
	stage, err := pipeline.ParseStage(c.Param("stage"))
	if err != nil {
		return webserver.FailErr(c, err)
	}
	var payload stageConfirmPayload
	if err := c.Bind(&payload); err != nil || payload.ProductId == 0 {
		return webserver.FailErr(c, errs.Validation("product_id is required"))
	}

	if err := h.orchestrator.ConfirmStage(
		c.Request().Context(), userID, payload.ProductId, stage, payload.Content); err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, map[string]interface{}{"ok": true})
}
