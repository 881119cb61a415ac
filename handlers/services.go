package handlers

import (
	"gorm.io/gorm"

	"github.com/okothmicah/mentor_connect/services"
)

var (
	bookingService      *services.BookingService
	availabilityService *services.AvailabilityService
)

// Init wires the handler package to its services. Called once from main
// after the database connection is up.
func Init(db *gorm.DB, notifier services.Notifier) {
	bookingService = services.NewBookingService(
		services.NewGormBookingStore(db),
		services.NewGormUserStore(db),
		notifier,
	)
	availabilityService = services.NewAvailabilityService(
		services.NewGormAvailabilityStore(db),
	)
}
