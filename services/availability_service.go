package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/okothmicah/mentor_connect/models"
	"github.com/okothmicah/mentor_connect/utils"
)

type AvailabilityStore interface {
	ByMentor(mentorID uuid.UUID) (*models.Availability, error)
	Upsert(av *models.Availability) error
}

// AvailabilityService owns the mentor-side write path for schedules and the
// read-only slot lookups the rest of the system uses.
type AvailabilityService struct {
	store AvailabilityStore
}

func NewAvailabilityService(store AvailabilityStore) *AvailabilityService {
	return &AvailabilityService{store: store}
}

// SlotsForDate resolves the windows a mentor can be booked on a given date.
// A date override wins verbatim, even when it is empty (an explicitly blocked
// day); otherwise the weekly schedule applies by weekday.
func SlotsForDate(a *models.Availability, date time.Time) []models.TimeSlot {
	dateKey := date.Format("2006-01-02")
	for _, override := range a.DateOverrides {
		if override.Date == dateKey {
			return override.Slots
		}
	}
	weekday := int(date.Weekday())
	for _, day := range a.WeeklySchedule {
		if day.Weekday == weekday {
			return day.Slots
		}
	}
	return nil
}

// IsTimeSlotAvailable reports whether some declared window fully contains
// [startTime, startTime+duration).
func IsTimeSlotAvailable(a *models.Availability, date time.Time, startTime string, duration int) bool {
	reqStart := utils.TimeToMinutes(startTime)
	reqEnd := reqStart + duration
	for _, slot := range SlotsForDate(a, date) {
		if utils.TimeToMinutes(slot.Start) <= reqStart && reqEnd <= utils.TimeToMinutes(slot.End) {
			return true
		}
	}
	return false
}

type SetAvailabilityInput struct {
	WeeklySchedule  models.WeeklySchedule
	DateOverrides   models.DateOverrides
	Timezone        string
	MinAdvanceHours int
	MaxAdvanceDays  int
	BufferMinutes   int
}

// SetForMentor creates or replaces a mentor's availability record.
func (s *AvailabilityService) SetForMentor(mentorID uuid.UUID, in SetAvailabilityInput) (*models.Availability, error) {
	for _, day := range in.WeeklySchedule {
		if err := validateSlots(day.Slots); err != nil {
			return nil, err
		}
	}
	for _, override := range in.DateOverrides {
		if err := validateSlots(override.Slots); err != nil {
			return nil, err
		}
	}

	av := &models.Availability{
		MentorID:        mentorID,
		WeeklySchedule:  in.WeeklySchedule,
		DateOverrides:   in.DateOverrides,
		Timezone:        in.Timezone,
		MinAdvanceHours: in.MinAdvanceHours,
		MaxAdvanceDays:  in.MaxAdvanceDays,
		BufferMinutes:   in.BufferMinutes,
	}
	if av.Timezone == "" {
		av.Timezone = "UTC"
	}
	if av.MinAdvanceHours == 0 {
		av.MinAdvanceHours = models.DefaultMinAdvanceHours
	}
	if av.MaxAdvanceDays == 0 {
		av.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if av.BufferMinutes == 0 {
		av.BufferMinutes = models.DefaultBufferMinutes
	}

	if err := s.store.Upsert(av); err != nil {
		return nil, err
	}
	return av, nil
}

func (s *AvailabilityService) ForMentor(mentorID uuid.UUID) (*models.Availability, error) {
	return s.store.ByMentor(mentorID)
}

// AvailableSlotsOn returns a mentor's declared windows for one date.
func (s *AvailabilityService) AvailableSlotsOn(mentorID uuid.UUID, date time.Time) ([]models.TimeSlot, error) {
	av, err := s.store.ByMentor(mentorID)
	if err != nil {
		return nil, err
	}
	return SlotsForDate(av, date), nil
}

func validateSlots(slots []models.TimeSlot) error {
	for _, slot := range slots {
		if utils.TimeToMinutes(slot.Start) >= utils.TimeToMinutes(slot.End) {
			return ErrInvalidTimeSlot
		}
	}
	return nil
}
