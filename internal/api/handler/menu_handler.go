package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/core/ports"
)

// MenuHandler serves the catalog.
type MenuHandler struct {
	menu ports.MenuService
}

func NewMenuHandler(menu ports.MenuService) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// List handles GET /menu.
//
// @Summary      List menu items
// @Description  Both filters are optional and combine with AND. Without filters the whole menu is returned.
// @Tags         menu
// @Produce      json
// @Param        category  query     string  false  "Category id"
// @Param        query     query     string  false  "Full-text search on the item name"
// @Success      200       {object}  menuResponse
// @Failure      502       {object}  errorResponse
// @Router       /menu [get]
func (h *MenuHandler) List(c echo.Context) error {
	q := domain.MenuQuery{
		Category:   strings.TrimSpace(c.QueryParam("category")),
		SearchText: strings.TrimSpace(c.QueryParam("query")),
	}

	items, err := h.menu.GetMenu(c.Request().Context(), q)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	return c.JSON(http.StatusOK, menuResponse{Items: items, Count: len(items)})
}

// Categories handles GET /categories.
//
// @Summary      List categories
// @Tags         menu
// @Produce      json
// @Success      200  {object}  categoriesResponse
// @Failure      502  {object}  errorResponse
// @Router       /categories [get]
func (h *MenuHandler) Categories(c echo.Context) error {
	cats, err := h.menu.GetCategories(c.Request().Context())
	if err != nil {
		return err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: cats})
}

// File handles GET /files/:file_id by redirecting to the storage view URL.
//
// @Summary      Resolve a stored file
// @Tags         menu
// @Param        file_id  path  string  true  "File id in the images bucket"
// @Success      302
// @Router       /files/{file_id} [get]
func (h *MenuHandler) File(c echo.Context) error {
	id := strings.TrimSpace(c.Param("file_id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file id is required")
	}
	return c.Redirect(http.StatusFound, h.menu.FileURL(id))
}
