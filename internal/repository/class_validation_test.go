package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitness-class-booking/internal/model"
)

func pinnedClassRepo(now time.Time) *ClassRepo {
	return &ClassRepo{now: func() time.Time { return now }}
}

func validSpec(now time.Time) ClassSpec {
	return ClassSpec{
		Name:            "Evening Zumba",
		ClassType:       model.ClassTypeZumba,
		Instructor:      "Jane Smith",
		DurationMinutes: 45,
		DateTime:        now.Add(48 * time.Hour),
		TotalSlots:      15,
	}
}

func TestClassSpecValidation(t *testing.T) {
	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := pinnedClassRepo(now)

	t.Run("accepts a valid spec", func(t *testing.T) {
		assert.NoError(t, repo.validate(validSpec(now), true))
	})

	t.Run("rejects a past start time", func(t *testing.T) {
		spec := validSpec(now)
		spec.DateTime = now.Add(-time.Minute)
		err := repo.validate(spec, true)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "date_time")
	})

	t.Run("rejects a start time of exactly now", func(t *testing.T) {
		spec := validSpec(now)
		spec.DateTime = now
		err := repo.validate(spec, true)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "date_time")
	})

	t.Run("rejects zero total slots", func(t *testing.T) {
		spec := validSpec(now)
		spec.TotalSlots = 0
		err := repo.validate(spec, true)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "total_slots")
	})

	t.Run("rejects zero duration", func(t *testing.T) {
		spec := validSpec(now)
		spec.DurationMinutes = 0
		err := repo.validate(spec, true)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "duration_minutes")
	})

	t.Run("rejects an unknown class type", func(t *testing.T) {
		spec := validSpec(now)
		spec.ClassType = "PILATES"
		err := repo.validate(spec, true)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "class_type")
	})

	t.Run("rejects available slots above capacity at creation", func(t *testing.T) {
		spec := validSpec(now)
		extra := uint32(16)
		spec.AvailableSlots = &extra
		err := repo.validate(spec, true)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "available_slots")
	})

	t.Run("rejects available slots on update", func(t *testing.T) {
		spec := validSpec(now)
		n := uint32(5)
		spec.AvailableSlots = &n
		err := repo.validate(spec, false)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "available_slots")
	})

	t.Run("collects every violation at once", func(t *testing.T) {
		spec := ClassSpec{DateTime: now.Add(-time.Hour)}
		err := repo.validate(spec, true)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		for _, field := range []string{"name", "class_type", "instructor", "duration_minutes", "date_time", "total_slots"} {
			assert.Contains(t, ve.Fields, field)
		}
	})
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"total_slots": "total_slots must be a positive integer",
		"name":        "name is required",
	}}
	// Field order in the message is sorted, so it is stable.
	assert.Equal(t,
		"validation failed: name: name is required; total_slots: total_slots must be a positive integer",
		err.Error())
}
