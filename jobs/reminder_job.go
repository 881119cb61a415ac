package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/okothmicah/mentor_connect/database"
	"github.com/okothmicah/mentor_connect/models"
	"github.com/okothmicah/mentor_connect/notifications"
	"github.com/okothmicah/mentor_connect/utils"
)

// SendSessionReminders emails both parties of approved sessions starting in
// roughly an hour. Runs every five minutes, so each booking falls inside the
// five-minute window exactly once.
func SendSessionReminders() {
	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	// Start times are zero-padded "HH:MM", so string comparison orders them
	// correctly. A window that crosses midnight is skipped until the next run.
	if lowerBound.Day() != upperBound.Day() {
		return
	}

	day := utils.StartOfDay(lowerBound)

	var upcoming []models.Booking
	err := database.DB.
		Preload("Student").
		Preload("Mentor").
		Where("status = ? AND requested_date = ? AND start_time >= ? AND start_time < ?",
			models.StatusApproved, day,
			lowerBound.Format("15:04"), upperBound.Format("15:04")).
		Find(&upcoming).Error
	if err != nil {
		log.Printf("Error checking for upcoming sessions: %v", err)
		return
	}

	for _, booking := range upcoming {
		meetingLink := ""
		if booking.MeetingLink != nil {
			meetingLink = *booking.MeetingLink
		}

		subject := "Reminder: Your Session Starts in 1 Hour!"
		body := fmt.Sprintf(
			"<h1>Session Reminder</h1><p>Your session on <b>%s</b> starts at %s.</p><p><b>Meeting Link:</b> <a href='%s'>Join Session</a></p>",
			booking.Topic, booking.StartTime, meetingLink,
		)

		go notifications.SendEmail(booking.Student.FullName, booking.Student.Email, subject, body)
		go notifications.SendEmail(booking.Mentor.FullName, booking.Mentor.Email, subject, body)
	}
}
