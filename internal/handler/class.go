package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-class-booking/internal/middleware"
	"github.com/iliyamo/fitness-class-booking/internal/model"
	"github.com/iliyamo/fitness-class-booking/internal/repository"
)

// ClassHandler serves the public, read-only side of the class catalog.
type ClassHandler struct {
	Catalog ClassCatalog
}

func NewClassHandler(catalog ClassCatalog) *ClassHandler {
	if catalog == nil {
		panic("nil catalog passed to NewClassHandler")
	}
	return &ClassHandler{Catalog: catalog}
}

// List handles GET /v1/classes. It returns upcoming classes ordered by
// start time, optionally filtered with ?type=YOGA|ZUMBA|HIIT and
// ?date=YYYY-MM-DD.
func (h *ClassHandler) List(c echo.Context) error {
	var filter repository.ClassFilter
	if t := c.QueryParam("type"); t != "" {
		if !model.ValidClassType(t) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown class type", "code": "VALIDATION_ERROR"})
		}
		filter.Type = t
	}
	if d := c.QueryParam("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD", "code": "VALIDATION_ERROR"})
		}
		filter.Date = &day
	}

	classes, err := h.Catalog.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}

	loc := middleware.LocationFrom(c)
	items := make([]classResponse, 0, len(classes))
	for i := range classes {
		items = append(items, renderClass(&classes[i], loc))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/classes/:id.
func (h *ClassHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id", "code": "VALIDATION_ERROR"})
	}
	class, err := h.Catalog.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": renderClass(class, middleware.LocationFrom(c))})
}
