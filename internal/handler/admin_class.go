package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-class-booking/internal/middleware"
	"github.com/iliyamo/fitness-class-booking/internal/repository"
)

// AdminClassHandler serves the admin-only catalog mutations. Role
// enforcement happens in middleware; by the time these handlers run
// the caller is known to be an ADMIN.
type AdminClassHandler struct {
	Catalog ClassCatalog
}

func NewAdminClassHandler(catalog ClassCatalog) *AdminClassHandler {
	if catalog == nil {
		panic("nil catalog passed to NewAdminClassHandler")
	}
	return &AdminClassHandler{Catalog: catalog}
}

// classPayload is the request body for class create and update.
// available_slots is accepted only at creation; update attempts to set
// it are rejected by the catalog. Unknown fields fail the request.
type classPayload struct {
	Name            string  `json:"name"`
	ClassType       string  `json:"class_type"`
	Instructor      string  `json:"instructor"`
	DurationMinutes uint32  `json:"duration_minutes"`
	DateTime        string  `json:"date_time"`
	TotalSlots      uint32  `json:"total_slots"`
	AvailableSlots  *uint32 `json:"available_slots"`
}

// toSpec converts the payload into a catalog spec. The date_time
// string is interpreted in the request's display timezone, mirroring
// how it is rendered back.
func (p *classPayload) toSpec(loc *time.Location) (repository.ClassSpec, error) {
	dt, err := time.ParseInLocation(dateTimeLayout, p.DateTime, loc)
	if err != nil {
		return repository.ClassSpec{}, &repository.ValidationError{Fields: map[string]string{
			"date_time": "date_time must be in dd/mm/yyyy HH:MM format",
		}}
	}
	return repository.ClassSpec{
		Name:            p.Name,
		ClassType:       p.ClassType,
		Instructor:      p.Instructor,
		DurationMinutes: p.DurationMinutes,
		DateTime:        dt.UTC(),
		TotalSlots:      p.TotalSlots,
		AvailableSlots:  p.AvailableSlots,
	}, nil
}

// Create handles POST /v1/admin/classes.
func (h *AdminClassHandler) Create(c echo.Context) error {
	var payload classPayload
	if err := bindStrict(c, &payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body", "code": "VALIDATION_ERROR"})
	}
	loc := middleware.LocationFrom(c)
	spec, err := payload.toSpec(loc)
	if err != nil {
		return writeError(c, err)
	}
	class, err := h.Catalog.Create(c.Request().Context(), spec)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": renderClass(class, loc)})
}

// Update handles PUT /v1/admin/classes/:id.
func (h *AdminClassHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id", "code": "VALIDATION_ERROR"})
	}
	var payload classPayload
	if err := bindStrict(c, &payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body", "code": "VALIDATION_ERROR"})
	}
	loc := middleware.LocationFrom(c)
	spec, err := payload.toSpec(loc)
	if err != nil {
		return writeError(c, err)
	}
	class, err := h.Catalog.Update(c.Request().Context(), id, spec)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": renderClass(class, loc)})
}

// Delete handles DELETE /v1/admin/classes/:id.
func (h *AdminClassHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id", "code": "VALIDATION_ERROR"})
	}
	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
