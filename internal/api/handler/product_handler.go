package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

// ProductHandler serves the catalog. Writes are multipart forms with an
// optional "image" file.
type ProductHandler struct {
	service ports.CatalogService
}

func NewProductHandler(service ports.CatalogService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /api/products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {array}   domain.Product
// @Failure      500  {object}  map[string]string
// @Router       /api/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

// Get handles GET /api/products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  map[string]string
// @Router       /api/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Create handles POST /api/products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        name      formData  string  true   "Name"
// @Param        category  formData  string  false  "Category"
// @Param        price     formData  number  true   "Unit price"
// @Param        stock     formData  integer true   "Units in stock"
// @Param        image     formData  file    false  "Product image"
// @Success      201  {object}  domain.Product
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	price, err := formFloat(c, "price")
	if err != nil {
		return err
	}
	stock, err := formInt(c, "stock")
	if err != nil {
		return err
	}
	image, closer, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer closer.Close()

	product, err := h.service.CreateProduct(c.Request().Context(), ports.ProductInput{
		Name:     valueOrEmpty(formValue(c, "name")),
		Category: valueOrEmpty(formValue(c, "category")),
		Price:    price,
		Stock:    stock,
		Image:    image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

// Update handles PUT /api/products/:id. Only the fields present in the form
// change.
//
// @Summary      Update a product
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id        path      string  true   "Product id"
// @Param        name      formData  string  false  "Name"
// @Param        category  formData  string  false  "Category"
// @Param        price     formData  number  false  "Unit price"
// @Param        stock     formData  integer false  "Units in stock"
// @Param        image     formData  file    false  "Replacement image"
// @Success      200  {object}  domain.Product
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	price, err := formFloat(c, "price")
	if err != nil {
		return err
	}
	stock, err := formInt(c, "stock")
	if err != nil {
		return err
	}
	image, closer, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer closer.Close()

	product, err := h.service.UpdateProduct(c.Request().Context(), c.Param("id"), ports.ProductPatch{
		Name:     formValue(c, "name"),
		Category: formValue(c, "category"),
		Price:    price,
		Stock:    stock,
		Image:    image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /api/products/:id.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}
