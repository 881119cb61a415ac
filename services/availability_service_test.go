package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okothmicah/mentor_connect/models"
)

type mockAvailabilityStore struct {
	mock.Mock
}

func (m *mockAvailabilityStore) ByMentor(mentorID uuid.UUID) (*models.Availability, error) {
	args := m.Called(mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Availability), args.Error(1)
}

func (m *mockAvailabilityStore) Upsert(av *models.Availability) error {
	return m.Called(av).Error(0)
}

// 2025-06-16 is a Monday.
var (
	monday  = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
	sunday  = monday.AddDate(0, 0, -1)
)

func mentorSchedule() *models.Availability {
	blocked := "public holiday"
	return &models.Availability{
		MentorID: uuid.New(),
		WeeklySchedule: models.WeeklySchedule{
			{Weekday: 1, Slots: []models.TimeSlot{
				{Start: "09:00", End: "12:00"},
				{Start: "14:00", End: "17:00"},
			}},
			{Weekday: 2, Slots: []models.TimeSlot{
				{Start: "10:00", End: "13:00"},
			}},
		},
		DateOverrides: models.DateOverrides{
			// Shortened hours on one particular Monday.
			{Date: "2025-06-23", Slots: []models.TimeSlot{{Start: "09:00", End: "10:00"}}},
			// Fully blocked Tuesday.
			{Date: "2025-06-24", Slots: []models.TimeSlot{}, Reason: &blocked},
		},
	}
}

func TestSlotsForDate(t *testing.T) {
	av := mentorSchedule()

	t.Run("weekly schedule applies by weekday", func(t *testing.T) {
		slots := SlotsForDate(av, monday)
		require.Len(t, slots, 2)
		assert.Equal(t, "09:00", slots[0].Start)
		assert.Equal(t, "17:00", slots[1].End)
	})

	t.Run("no weekly entry means no slots", func(t *testing.T) {
		assert.Empty(t, SlotsForDate(av, sunday))
	})

	t.Run("override replaces the weekly windows", func(t *testing.T) {
		nextMonday := monday.AddDate(0, 0, 7)
		slots := SlotsForDate(av, nextMonday)
		require.Len(t, slots, 1)
		assert.Equal(t, models.TimeSlot{Start: "09:00", End: "10:00"}, slots[0])
	})

	t.Run("empty override blocks the whole day", func(t *testing.T) {
		nextTuesday := tuesday.AddDate(0, 0, 7)
		slots := SlotsForDate(av, nextTuesday)
		assert.NotNil(t, slots)
		assert.Empty(t, slots)
	})
}

func TestIsTimeSlotAvailable(t *testing.T) {
	av := mentorSchedule()

	tests := []struct {
		name     string
		date     time.Time
		start    string
		duration int
		want     bool
	}{
		{"fully inside a window", monday, "09:00", 90, true},
		{"flush against the window end", monday, "10:30", 90, true},
		{"spills past the window end", monday, "11:30", 60, false},
		{"inside the afternoon window", monday, "16:00", 60, true},
		{"between windows", monday, "12:30", 60, false},
		{"day without schedule", sunday, "09:00", 30, false},
		{"blocked override day", tuesday.AddDate(0, 0, 7), "10:00", 30, false},
		{"shortened override day still bookable", monday.AddDate(0, 0, 7), "09:00", 60, true},
		{"shortened override day outside new hours", monday.AddDate(0, 0, 7), "14:00", 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeSlotAvailable(av, tt.date, tt.start, tt.duration))
		})
	}
}

func TestSetForMentorAppliesDefaults(t *testing.T) {
	store := new(mockAvailabilityStore)
	store.On("Upsert", mock.AnythingOfType("*models.Availability")).Return(nil)

	svc := NewAvailabilityService(store)
	mentorID := uuid.New()

	av, err := svc.SetForMentor(mentorID, SetAvailabilityInput{
		WeeklySchedule: models.WeeklySchedule{
			{Weekday: 1, Slots: []models.TimeSlot{{Start: "09:00", End: "12:00"}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, mentorID, av.MentorID)
	assert.Equal(t, "UTC", av.Timezone)
	assert.Equal(t, models.DefaultMinAdvanceHours, av.MinAdvanceHours)
	assert.Equal(t, models.DefaultMaxAdvanceDays, av.MaxAdvanceDays)
	assert.Equal(t, models.DefaultBufferMinutes, av.BufferMinutes)
	store.AssertExpectations(t)
}

func TestSetForMentorRejectsInvertedSlots(t *testing.T) {
	store := new(mockAvailabilityStore)
	svc := NewAvailabilityService(store)

	_, err := svc.SetForMentor(uuid.New(), SetAvailabilityInput{
		WeeklySchedule: models.WeeklySchedule{
			{Weekday: 1, Slots: []models.TimeSlot{{Start: "12:00", End: "09:00"}}},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	_, err = svc.SetForMentor(uuid.New(), SetAvailabilityInput{
		DateOverrides: models.DateOverrides{
			{Date: "2025-06-23", Slots: []models.TimeSlot{{Start: "10:00", End: "10:00"}}},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	store.AssertNotCalled(t, "Upsert", mock.Anything)
}
