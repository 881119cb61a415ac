package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/okothmicah/mentor_connect/models"
	"github.com/okothmicah/mentor_connect/services"
)

// currentUserID pulls the caller's identity from the verified JWT. Identity
// is never accepted from request bodies.
func currentUserID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	return userID
}

// serviceError maps the service error taxonomy onto HTTP statuses. Internal
// details stay in logs.
func serviceError(c *fiber.Ctx, err error) error {
	var transition *models.InvalidTransitionError
	switch {
	case errors.Is(err, services.ErrTimeConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrMentorNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAvailabilityNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPastDate),
		errors.Is(err, services.ErrCancellationWindow),
		errors.Is(err, services.ErrInvalidTimeSlot),
		errors.As(err, &transition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("🔥 Unexpected service error: %v | Path: %s", err, c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

type CreateBookingRequest struct {
	MentorID      string  `json:"mentor_id" validate:"required,uuid"`
	RequestedDate string  `json:"requested_date" validate:"required,datetime=2006-01-02"`
	StartTime     string  `json:"start_time" validate:"required,datetime=15:04"`
	Duration      int     `json:"duration" validate:"required,oneof=30 60 90"`
	Topic         string  `json:"topic" validate:"required,min=3,max=100"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=500"`
	StudentNotes  *string `json:"student_notes,omitempty" validate:"omitempty,max=500"`
}

func CreateBooking(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	mentorID, _ := uuid.Parse(req.MentorID)
	requestedDate, _ := time.Parse("2006-01-02", req.RequestedDate)

	booking, err := bookingService.CreateBookingRequest(studentID, services.CreateBookingInput{
		MentorID:      mentorID,
		RequestedDate: requestedDate,
		StartTime:     req.StartTime,
		Duration:      req.Duration,
		Topic:         req.Topic,
		Description:   req.Description,
		StudentNotes:  req.StudentNotes,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(booking)
}

type ApproveBookingRequest struct {
	MeetingLink string  `json:"meeting_link" validate:"required,url"`
	MentorNotes *string `json:"mentor_notes,omitempty" validate:"omitempty,max=500"`
}

func ApproveBooking(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req ApproveBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := bookingService.ApproveBooking(bookingID, mentorID, services.ApproveBookingInput{
		MeetingLink: req.MeetingLink,
		MentorNotes: req.MentorNotes,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(booking)
}

type RejectBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

func RejectBooking(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req RejectBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := bookingService.RejectBooking(bookingID, mentorID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(booking)
}

type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellation_reason,omitempty" validate:"omitempty,max=200"`
}

func CancelBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)

	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	// Body is optional on cancel.
	var req CancelBookingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	booking, err := bookingService.CancelBooking(bookingID, userID, req.CancellationReason)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(booking)
}

func GetBookingsByMentor(c *fiber.Ctx) error {
	mentorID, err := uuid.Parse(c.Params("mentorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	bookings, err := bookingService.BookingsByMentor(mentorID, c.Query("status"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(bookings)
}

func GetBookingsByStudent(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	bookings, err := bookingService.BookingsByStudent(studentID, c.Query("status"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(bookings)
}

func GetBooking(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := bookingService.BookingByID(bookingID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(booking)
}
