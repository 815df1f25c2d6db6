package handler

import (
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// PageHandler serves the static pages that sit behind a page session guard.
type PageHandler struct {
	viewsDir string
}

func NewPageHandler(viewsDir string) *PageHandler {
	return &PageHandler{viewsDir: viewsDir}
}

// Checkout handles GET /checkout.
func (h *PageHandler) Checkout(c echo.Context) error {
	return c.File(filepath.Join(h.viewsDir, "checkout.html"))
}
