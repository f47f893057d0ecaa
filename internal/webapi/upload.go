package webapi

import (
	"io"
	"mime/multipart"

	"github.com/labstack/echo/v4"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/ingest"
	"github.com/launchpadhq/launchpad/internal/webserver"
)

// readUpload buffers a multipart part, bounded to one byte past limit so the
// ingestor can report its own size error.
func readUpload(fh *multipart.FileHeader, limit int64) (*ingest.Upload, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, errs.Validation("could not read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, errs.Validation("could not read uploaded file")
	}
	return &ingest.Upload{Filename: fh.Filename, Data: data}, nil
}

func (h *Handlers) upload(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return webserver.FailErr(c, err)
	}

	docHeader, err := c.FormFile("file")
	if err != nil {
		return webserver.FailErr(c, errs.Validation("no file uploaded"))
	}
	doc, err := readUpload(docHeader, h.appCtx.MaxUploadBytes())
	if err != nil {
		return webserver.FailErr(c, err)
	}

	var image *ingest.Upload
	if imageHeader, err := c.FormFile("image"); err == nil {
		image, err = readUpload(imageHeader, ingest.DefaultMaxImageBytes)
		if err != nil {
			return webserver.FailErr(c, err)
		}
	}

	product, err := h.ingestor.Ingest(
		c.Request().Context(), userID, *doc, image, c.FormValue("name"))
	if err != nil {
		return webserver.FailErr(c, err)
	}
	return webserver.OK(c, product)
}
