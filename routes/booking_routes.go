package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/okothmicah/mentor_connect/handlers"
	"github.com/okothmicah/mentor_connect/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Post("", handlers.CreateBooking)
	booking.Get("/mentor/:mentorId", handlers.GetBookingsByMentor)
	booking.Get("/student/:studentId", handlers.GetBookingsByStudent)
	booking.Get("/:bookingId", handlers.GetBooking)
	booking.Put("/:bookingId/approve", middleware.MentorRequired(), handlers.ApproveBooking)
	booking.Put("/:bookingId/reject", middleware.MentorRequired(), handlers.RejectBooking)
	booking.Put("/:bookingId/cancel", handlers.CancelBooking)
}
