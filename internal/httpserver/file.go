package httpserver

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type FileHTTP struct {
	Svc *service.FileService
}

// Upload expects a multipart form with the image under "file".
func (h *FileHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "file.upload")

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(l, "upload_failed", "multipart field \"file\" is required", err)
	}
	src, err := fh.Open()
	if err != nil {
		return badRequest(l, "upload_failed", "cannot read file", err)
	}
	defer src.Close()

	f, err := h.Svc.Upload(ctx, fh.Filename, fh.Size, src)
	if err != nil {
		return fail(l, "upload_failed", err)
	}

	l.Info("upload_success", "public_id", f.PublicID, "bytes", fh.Size)
	return c.JSON(http.StatusCreated, transport.FileResponse{URL: f.URL, PublicID: f.PublicID})
}

// Delete takes the public id as a path segment; folder separators must be
// escaped as %2F.
func (h *FileHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "file.delete")

	id, err := url.PathUnescape(c.Param("id"))
	if err != nil {
		return badRequest(l, "delete_file_failed", "invalid file id", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_file_failed", err)
	}

	l.Info("delete_file_success", "public_id", id)
	return c.NoContent(http.StatusNoContent)
}
