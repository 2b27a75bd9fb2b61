package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jsmfood/food-ordering/internal/api/middleware"
)

// ctxAccountID extracts the account id injected by the Auth middleware. Its
// absence means the route was mounted without the middleware.
func ctxAccountID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.CtxAccountID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
