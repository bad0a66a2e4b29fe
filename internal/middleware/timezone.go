package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// ContextLocation is the context key under which Timezone stores the
// display *time.Location for the request.
const ContextLocation = "tz"

// Timezone returns a middleware that selects the timezone used to
// format date_time fields in responses. Clients opt in with an
// X-Timezone header carrying an IANA name; unknown or missing values
// fall back to the configured default rather than failing the
// request. This is purely a presentation concern: storage and all
// booking decisions stay in UTC.
func Timezone(defaultTZ string) echo.MiddlewareFunc {
	fallback, err := time.LoadLocation(defaultTZ)
	if err != nil {
		fallback = time.UTC
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loc := fallback
			if name := c.Request().Header.Get("X-Timezone"); name != "" {
				if l, err := time.LoadLocation(name); err == nil {
					loc = l
				}
			}
			c.Set(ContextLocation, loc)
			return next(c)
		}
	}
}

// LocationFrom extracts the display location stored by Timezone,
// defaulting to UTC when the middleware did not run.
func LocationFrom(c echo.Context) *time.Location {
	if loc, ok := c.Get(ContextLocation).(*time.Location); ok && loc != nil {
		return loc
	}
	return time.UTC
}
