package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitness-class-booking/internal/middleware"
	"github.com/iliyamo/fitness-class-booking/internal/model"
	"github.com/iliyamo/fitness-class-booking/internal/repository"
)

type stubCatalog struct {
	createFn func(ctx context.Context, spec repository.ClassSpec) (*model.FitnessClass, error)
	updateFn func(ctx context.Context, id uint64, spec repository.ClassSpec) (*model.FitnessClass, error)
	deleteFn func(ctx context.Context, id uint64) error
	getFn    func(ctx context.Context, id uint64) (*model.FitnessClass, error)
	listFn   func(ctx context.Context, filter repository.ClassFilter) ([]model.FitnessClass, error)
}

func (s *stubCatalog) Create(ctx context.Context, spec repository.ClassSpec) (*model.FitnessClass, error) {
	return s.createFn(ctx, spec)
}

func (s *stubCatalog) Update(ctx context.Context, id uint64, spec repository.ClassSpec) (*model.FitnessClass, error) {
	return s.updateFn(ctx, id, spec)
}

func (s *stubCatalog) Delete(ctx context.Context, id uint64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubCatalog) GetByID(ctx context.Context, id uint64) (*model.FitnessClass, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalog) List(ctx context.Context, filter repository.ClassFilter) ([]model.FitnessClass, error) {
	return s.listFn(ctx, filter)
}

func sampleClass() model.FitnessClass {
	return model.FitnessClass{
		ID:              4,
		Name:            "Morning Yoga",
		ClassType:       model.ClassTypeYoga,
		Instructor:      "Jane Smith",
		DurationMinutes: 60,
		DateTime:        time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC),
		TotalSlots:      10,
		AvailableSlots:  9,
		CreatedAt:       time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestListQueryValidation(t *testing.T) {
	h := NewClassHandler(&stubCatalog{
		listFn: func(context.Context, repository.ClassFilter) ([]model.FitnessClass, error) {
			return nil, nil
		},
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		c, rec := testCtx(http.MethodGet, "/v1/classes?type=SPINNING", "")
		require.NoError(t, h.List(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, rec)["code"])
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		c, rec := testCtx(http.MethodGet, "/v1/classes?date=01-06-2030", "")
		require.NoError(t, h.List(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("passes valid filters through", func(t *testing.T) {
		var got repository.ClassFilter
		h := NewClassHandler(&stubCatalog{
			listFn: func(_ context.Context, filter repository.ClassFilter) ([]model.FitnessClass, error) {
				got = filter
				return []model.FitnessClass{sampleClass()}, nil
			},
		})
		c, rec := testCtx(http.MethodGet, "/v1/classes?type=YOGA&date=2030-06-01", "")
		require.NoError(t, h.List(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.ClassTypeYoga, got.Type)
		require.NotNil(t, got.Date)
		assert.Equal(t, "2030-06-01", got.Date.Format("2006-01-02"))
	})
}

func TestGetRendersDisplayTimezone(t *testing.T) {
	cl := sampleClass()
	h := NewClassHandler(&stubCatalog{
		getFn: func(_ context.Context, id uint64) (*model.FitnessClass, error) {
			assert.Equal(t, uint64(4), id)
			return &cl, nil
		},
	})

	c, rec := testCtx(http.MethodGet, "/v1/classes/4", "")
	c.SetParamNames("id")
	c.SetParamValues("4")
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	c.Set(middleware.ContextLocation, kolkata)
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	item := decodeBody(t, rec)["item"].(map[string]interface{})
	// 09:00 UTC is 14:30 in Asia/Kolkata.
	assert.Equal(t, "01/06/2030 14:30", item["date_time"])
	assert.Equal(t, true, item["is_bookable"])
}

func TestGetUnknownClass(t *testing.T) {
	h := NewClassHandler(&stubCatalog{
		getFn: func(context.Context, uint64) (*model.FitnessClass, error) {
			return nil, repository.ErrClassNotFound
		},
	})
	c, rec := testCtx(http.MethodGet, "/v1/classes/999", "")
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestAdminCreateParsesPayload(t *testing.T) {
	t.Run("date_time is read in the display timezone", func(t *testing.T) {
		var got repository.ClassSpec
		cl := sampleClass()
		h := NewAdminClassHandler(&stubCatalog{
			createFn: func(_ context.Context, spec repository.ClassSpec) (*model.FitnessClass, error) {
				got = spec
				return &cl, nil
			},
		})
		body := `{"name":"Morning Yoga","class_type":"YOGA","instructor":"Jane Smith",` +
			`"duration_minutes":60,"date_time":"01/06/2030 14:30","total_slots":10}`
		c, rec := testCtx(http.MethodPost, "/v1/admin/classes", body)
		kolkata, err := time.LoadLocation("Asia/Kolkata")
		require.NoError(t, err)
		c.Set(middleware.ContextLocation, kolkata)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		// 14:30 IST stored as 09:00 UTC.
		assert.Equal(t, time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC), got.DateTime)
		assert.Equal(t, uint32(10), got.TotalSlots)
	})

	t.Run("rejects a malformed date_time", func(t *testing.T) {
		h := NewAdminClassHandler(&stubCatalog{})
		body := `{"name":"x","class_type":"YOGA","instructor":"y","duration_minutes":60,` +
			`"date_time":"2030-06-01T09:00:00Z","total_slots":10}`
		c, rec := testCtx(http.MethodPost, "/v1/admin/classes", body)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body2 := decodeBody(t, rec)
		assert.Equal(t, "VALIDATION_ERROR", body2["code"])
		fields := body2["fields"].(map[string]interface{})
		assert.Contains(t, fields, "date_time")
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		h := NewAdminClassHandler(&stubCatalog{})
		c, rec := testCtx(http.MethodPost, "/v1/admin/classes", `{"name":"x","price":25}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("surfaces catalog validation failures", func(t *testing.T) {
		h := NewAdminClassHandler(&stubCatalog{
			createFn: func(context.Context, repository.ClassSpec) (*model.FitnessClass, error) {
				return nil, &repository.ValidationError{Fields: map[string]string{
					"total_slots": "total_slots must be a positive integer",
				}}
			},
		})
		body := `{"name":"x","class_type":"YOGA","instructor":"y","duration_minutes":60,` +
			`"date_time":"01/06/2030 09:00","total_slots":0}`
		c, rec := testCtx(http.MethodPost, "/v1/admin/classes", body)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		fields := decodeBody(t, rec)["fields"].(map[string]interface{})
		assert.Contains(t, fields, "total_slots")
	})
}

func TestAdminDelete(t *testing.T) {
	t.Run("deletes by id", func(t *testing.T) {
		var deleted uint64
		h := NewAdminClassHandler(&stubCatalog{
			deleteFn: func(_ context.Context, id uint64) error {
				deleted = id
				return nil
			},
		})
		c, rec := testCtx(http.MethodDelete, "/v1/admin/classes/4", "")
		c.SetParamNames("id")
		c.SetParamValues("4")
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, uint64(4), deleted)
	})

	t.Run("404 on unknown id", func(t *testing.T) {
		h := NewAdminClassHandler(&stubCatalog{
			deleteFn: func(context.Context, uint64) error { return repository.ErrClassNotFound },
		})
		c, rec := testCtx(http.MethodDelete, "/v1/admin/classes/999", "")
		c.SetParamNames("id")
		c.SetParamValues("999")
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
