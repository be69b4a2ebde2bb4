package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adminhub/user-accounts/internal/core/ports"
	"github.com/adminhub/user-accounts/internal/core/validation"
)

const imageField = "image"

// readUploads loads every file posted under field. Non-multipart requests
// carry no files. Each file is read up to one byte past the size limit so
// validation can report oversize uploads.
func readUploads(c echo.Context, field string) ([]ports.ImageUpload, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form").SetInternal(err)
	}

	files := form.File[field]
	uploads := make([]ports.ImageUpload, 0, len(files))
	for _, fh := range files {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) (ports.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return ports.ImageUpload{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, validation.MaxImageBytes+1))
	if err != nil {
		return ports.ImageUpload{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return ports.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
