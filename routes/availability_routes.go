package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/okothmicah/mentor_connect/handlers"
	"github.com/okothmicah/mentor_connect/middleware"
)

func AvailabilityRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/mentors/:mentorId/availability", handlers.GetMentorAvailability)
	api.Get("/mentors/:mentorId/availability/slots", handlers.GetMentorAvailableSlots)

	mentor := api.Group("/mentor/availability", middleware.Protected(), middleware.MentorRequired())
	mentor.Put("", handlers.SetMyAvailability)
	mentor.Get("/me", handlers.GetMyAvailability)
}
