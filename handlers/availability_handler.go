package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/okothmicah/mentor_connect/models"
	"github.com/okothmicah/mentor_connect/services"
)

type SetAvailabilityRequest struct {
	WeeklySchedule  models.WeeklySchedule `json:"weekly_schedule" validate:"dive"`
	DateOverrides   models.DateOverrides  `json:"date_overrides" validate:"dive"`
	Timezone        string                `json:"timezone" validate:"omitempty,max=64"`
	MinAdvanceHours int                   `json:"min_advance_hours" validate:"omitempty,min=1,max=720"`
	MaxAdvanceDays  int                   `json:"max_advance_days" validate:"omitempty,min=1,max=365"`
	BufferMinutes   int                   `json:"buffer_minutes" validate:"omitempty,min=0,max=120"`
}

// SetMyAvailability creates or replaces the calling mentor's schedule.
func SetMyAvailability(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	var req SetAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	availability, err := availabilityService.SetForMentor(mentorID, services.SetAvailabilityInput{
		WeeklySchedule:  req.WeeklySchedule,
		DateOverrides:   req.DateOverrides,
		Timezone:        req.Timezone,
		MinAdvanceHours: req.MinAdvanceHours,
		MaxAdvanceDays:  req.MaxAdvanceDays,
		BufferMinutes:   req.BufferMinutes,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(availability)
}

func GetMyAvailability(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	availability, err := availabilityService.ForMentor(mentorID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(availability)
}

func GetMentorAvailability(c *fiber.Ctx) error {
	mentorID, err := uuid.Parse(c.Params("mentorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	availability, err := availabilityService.ForMentor(mentorID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(availability)
}

// GetMentorAvailableSlots resolves a mentor's bookable windows for one date.
func GetMentorAvailableSlots(c *fiber.Ctx) error {
	mentorID, err := uuid.Parse(c.Params("mentorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query parameter 'date' must be YYYY-MM-DD"})
	}

	slots, err := availabilityService.AvailableSlotsOn(mentorID, date)
	if err != nil {
		return serviceError(c, err)
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}

	return c.JSON(fiber.Map{
		"date":  c.Query("date"),
		"slots": slots,
	})
}
