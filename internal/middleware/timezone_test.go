package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTimezone(t *testing.T, defaultTZ, header string) *time.Location {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("X-Timezone", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got *time.Location
	h := Timezone(defaultTZ)(func(c echo.Context) error {
		got = LocationFrom(c)
		return nil
	})
	require.NoError(t, h(c))
	return got
}

func TestTimezone(t *testing.T) {
	t.Run("uses the header timezone when valid", func(t *testing.T) {
		loc := runTimezone(t, "Asia/Kolkata", "Europe/Berlin")
		assert.Equal(t, "Europe/Berlin", loc.String())
	})

	t.Run("falls back to the default on an unknown name", func(t *testing.T) {
		loc := runTimezone(t, "Asia/Kolkata", "Mars/Olympus")
		assert.Equal(t, "Asia/Kolkata", loc.String())
	})

	t.Run("falls back to the default without a header", func(t *testing.T) {
		loc := runTimezone(t, "Asia/Kolkata", "")
		assert.Equal(t, "Asia/Kolkata", loc.String())
	})

	t.Run("falls back to UTC on a bad default", func(t *testing.T) {
		loc := runTimezone(t, "Not/AZone", "")
		assert.Equal(t, time.UTC, loc)
	})
}

func TestLocationFromWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, time.UTC, LocationFrom(c))
}
