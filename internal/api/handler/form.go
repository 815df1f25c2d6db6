package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const maxImageBytes = 10 << 20

// formValue returns nil when the field is absent so partial updates can
// tell "not sent" from "sent empty".
func formValue(c echo.Context, name string) *string {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}
	values, ok := params[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}

func formFloat(c echo.Context, name string) (*float64, error) {
	raw := formValue(c, name)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*raw, 64)
	if err != nil || !domain.IsFinite(f) {
		return nil, domain.Invalid(name, name+" must be a number")
	}
	return &f, nil
}

func formInt(c echo.Context, name string) (*int, error) {
	raw := formValue(c, name)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, domain.Invalid(name, name+" must be a whole number")
	}
	return &n, nil
}

func valueOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// formImage opens the optional uploaded file. The returned closer is never
// nil.
func formImage(c echo.Context, field string) (*ports.BlobUpload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nopCloser{}, nil
		}
		return nil, nopCloser{}, domain.Invalid(field, "invalid upload")
	}
	if fh.Size > maxImageBytes {
		return nil, nopCloser{}, domain.Invalid(field, fmt.Sprintf("%s exceeds %d MB", field, maxImageBytes>>20))
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*ports.BlobUpload, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("open upload: %w", err)
	}
	return &ports.BlobUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
