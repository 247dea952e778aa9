package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type ProductHandler struct {
	catalogService ports.CatalogService
}

func NewProductHandler(catalogService ports.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// List returns a page of the catalog.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        keyword   query     string  false  "Case-insensitive name filter"
// @Param        category  query     string  false  "Category"
// @Param        page      query     int     false  "Page number, starting at 1"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  productPageResponse
// @Failure      400       {object}  map[string]any
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	page, err := intQuery(c, "page")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}

	result, err := h.catalogService.List(c.Request().Context(), ports.ListProductsFilter{
		Keyword:  c.QueryParam("keyword"),
		Category: c.QueryParam("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductPageResponse(result))
}

// Get returns a single product.
//
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  map[string]any
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.catalogService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productResponse{Product: product})
}

// Create adds a product to the catalog.
//
// @Summary      Create product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product details"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  map[string]any
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalogService.Create(c.Request().Context(), toCreateProductInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, productResponse{Product: product})
}

// intQuery parses an optional positive integer query parameter; 0 means unset.
func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.Validationf("%s must be a positive integer", name)
	}
	return n, nil
}
