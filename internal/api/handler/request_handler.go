package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/core/ports"
)

type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Submit handles POST /submit-request. The confirmation email goes out in
// the background; its failure does not affect the response.
//
// @Summary      Submit a custom product request
// @Tags         requests
// @Accept       multipart/form-data
// @Produce      json
// @Param        name      formData  string  true   "Requester name"
// @Param        email     formData  string  true   "Requester email"
// @Param        product   formData  string  true   "Requested product"
// @Param        category  formData  string  false  "Category"
// @Param        details   formData  string  false  "Details"
// @Param        image     formData  file    false  "Reference image"
// @Success      201  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /submit-request [post]
func (h *RequestHandler) Submit(c echo.Context) error {
	image, closer, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer closer.Close()

	_, err = h.service.SubmitRequest(c.Request().Context(), ports.CustomRequestInput{
		Name:     valueOrEmpty(formValue(c, "name")),
		Email:    valueOrEmpty(formValue(c, "email")),
		Product:  valueOrEmpty(formValue(c, "product")),
		Category: valueOrEmpty(formValue(c, "category")),
		Details:  valueOrEmpty(formValue(c, "details")),
		Image:    image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "Request submitted successfully!"})
}
