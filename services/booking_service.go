package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/okothmicah/mentor_connect/models"
	"github.com/okothmicah/mentor_connect/utils"
)

// BookingStore is the persistence surface the booking workflow needs. The
// GORM implementation lives in gorm_store.go; tests substitute a mock.
type BookingStore interface {
	// Create persists a new booking. Implementations must re-check for time
	// conflicts atomically with the insert and return ErrTimeConflict when a
	// concurrent request won the slot.
	Create(b *models.Booking) error
	Save(b *models.Booking) error
	ByID(id uuid.UUID) (*models.Booking, error)
	// ByIDForMentor returns ErrBookingNotFound when the booking is missing or
	// belongs to a different mentor; ownership is part of the lookup.
	ByIDForMentor(id, mentorID uuid.UUID) (*models.Booking, error)
	// ByIDForParticipant matches when the user is either party of the booking.
	ByIDForParticipant(id, userID uuid.UUID) (*models.Booking, error)
	ActiveForMentorOnDate(mentorID uuid.UUID, date time.Time) ([]models.Booking, error)
	ListByMentor(mentorID uuid.UUID, status string) ([]models.Booking, error)
	ListByStudent(studentID uuid.UUID, status string) ([]models.Booking, error)
}

type UserStore interface {
	ByID(id uuid.UUID) (*models.User, error)
}

// Notifier delivers a message to one recipient. Delivery failures are logged
// by the service and never fail the surrounding operation.
type Notifier interface {
	Send(toName, toEmail, subject, htmlBody string) error
}

type BookingService struct {
	bookings BookingStore
	users    UserStore
	notifier Notifier
	now      func() time.Time
}

func NewBookingService(bookings BookingStore, users UserStore, notifier Notifier) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// FindConflict returns the first booking still occupying its slot whose
// window overlaps the requested [start, start+duration) window, or nil.
// Two windows overlap iff reqStart < bookingEnd && reqEnd > bookingStart,
// so back-to-back sessions are allowed.
func FindConflict(existing []models.Booking, startTime string, duration int) *models.Booking {
	reqStart := utils.TimeToMinutes(startTime)
	reqEnd := reqStart + duration
	for i := range existing {
		b := &existing[i]
		if !models.IsActiveStatus(b.Status) {
			continue
		}
		bStart := utils.TimeToMinutes(b.StartTime)
		bEnd := bStart + b.Duration
		if reqStart < bEnd && reqEnd > bStart {
			return b
		}
	}
	return nil
}

type CreateBookingInput struct {
	MentorID      uuid.UUID
	RequestedDate time.Time
	StartTime     string
	Duration      int
	Topic         string
	Description   *string
	StudentNotes  *string
}

func (s *BookingService) CreateBookingRequest(studentID uuid.UUID, in CreateBookingInput) (*models.Booking, error) {
	mentor, err := s.users.ByID(in.MentorID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, err
	}
	if mentor.Role != models.RoleMentor {
		return nil, ErrMentorNotFound
	}

	day := utils.StartOfDay(in.RequestedDate)
	if !day.After(s.now()) {
		return nil, ErrPastDate
	}

	student, err := s.users.ByID(studentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.bookings.ActiveForMentorOnDate(in.MentorID, day)
	if err != nil {
		return nil, err
	}
	if conflict := FindConflict(existing, in.StartTime, in.Duration); conflict != nil {
		return nil, ErrTimeConflict
	}

	booking := &models.Booking{
		MentorID:      in.MentorID,
		StudentID:     studentID,
		RequestedDate: day,
		StartTime:     in.StartTime,
		Duration:      in.Duration,
		Topic:         in.Topic,
		Description:   in.Description,
		StudentNotes:  in.StudentNotes,
		Status:        models.StatusRequested,
	}
	if err := s.bookings.Create(booking); err != nil {
		return nil, err
	}
	booking.Mentor = *mentor
	booking.Student = *student

	s.notify(mentor.FullName, mentor.Email, "New Session Request",
		fmt.Sprintf("<h1>New Session Request</h1><p>%s has requested a session on <b>%s</b> with you on %s from %s to %s.</p><p>Log in to approve or reject the request.</p>",
			student.FullName, booking.Topic, day.Format("Monday, 02 Jan 2006"),
			booking.StartTime, utils.SessionEndTime(booking.StartTime, booking.Duration)))

	return models.WithEndTime(booking), nil
}

type ApproveBookingInput struct {
	MeetingLink string
	MentorNotes *string
}

func (s *BookingService) ApproveBooking(bookingID, mentorID uuid.UUID, in ApproveBookingInput) (*models.Booking, error) {
	booking, err := s.bookings.ByIDForMentor(bookingID, mentorID)
	if err != nil {
		return nil, err
	}
	if err := models.Transition(booking, models.StatusApproved); err != nil {
		return nil, err
	}
	booking.MeetingLink = &in.MeetingLink
	if in.MentorNotes != nil {
		booking.MentorNotes = in.MentorNotes
	}
	if err := s.bookings.Save(booking); err != nil {
		return nil, err
	}

	start := models.BookingStart(booking)
	s.notify(booking.Student.FullName, booking.Student.Email, "Your Session is Confirmed!",
		fmt.Sprintf("<h1>Session Approved</h1><p>%s approved your session on <b>%s</b>, %s at %s.</p><p><b>Meeting link:</b> <a href='%s'>Join session</a></p><p>Add it to your calendar: <a href='%s'>Google</a> | <a href='%s'>Outlook</a></p>",
			booking.Mentor.FullName, booking.Topic,
			booking.RequestedDate.Format("Monday, 02 Jan 2006"), booking.StartTime,
			in.MeetingLink,
			utils.GoogleCalendarLink(booking.Topic, start, booking.Duration, in.MeetingLink),
			utils.OutlookCalendarLink(booking.Topic, start, booking.Duration, in.MeetingLink)))

	return models.WithEndTime(booking), nil
}

func (s *BookingService) RejectBooking(bookingID, mentorID uuid.UUID, reason string) (*models.Booking, error) {
	booking, err := s.bookings.ByIDForMentor(bookingID, mentorID)
	if err != nil {
		return nil, err
	}
	if err := models.Transition(booking, models.StatusRejected); err != nil {
		return nil, err
	}
	booking.RejectionReason = &reason
	if err := s.bookings.Save(booking); err != nil {
		return nil, err
	}

	s.notify(booking.Student.FullName, booking.Student.Email, "Session Request Declined",
		fmt.Sprintf("<h1>Request Declined</h1><p>%s was unable to take your session on <b>%s</b>.</p><p><b>Reason:</b> %s</p>",
			booking.Mentor.FullName, booking.Topic, reason))

	return models.WithEndTime(booking), nil
}

func (s *BookingService) CancelBooking(bookingID, userID uuid.UUID, reason *string) (*models.Booking, error) {
	booking, err := s.bookings.ByIDForParticipant(bookingID, userID)
	if err != nil {
		return nil, err
	}
	if !models.CanBeCancelled(booking, s.now()) {
		// Distinguish the policy cutoff from a dead state: a terminal booking
		// fails the transition check, a live one is simply too close to start.
		if models.CanTransitionStatus(booking.Status, models.StatusCancelled) {
			return nil, ErrCancellationWindow
		}
		return nil, &models.InvalidTransitionError{From: booking.Status, To: models.StatusCancelled}
	}
	if err := models.Transition(booking, models.StatusCancelled); err != nil {
		return nil, err
	}
	booking.CancellationReason = reason
	if err := s.bookings.Save(booking); err != nil {
		return nil, err
	}

	// Notify whichever party did not initiate the cancellation.
	recipient := booking.Mentor
	if userID == booking.MentorID {
		recipient = booking.Student
	}
	body := fmt.Sprintf("<h1>Session Cancelled</h1><p>The session on <b>%s</b>, %s at %s, has been cancelled.</p>",
		booking.Topic, booking.RequestedDate.Format("Monday, 02 Jan 2006"), booking.StartTime)
	if reason != nil && *reason != "" {
		body += fmt.Sprintf("<p><b>Reason:</b> %s</p>", *reason)
	}
	s.notify(recipient.FullName, recipient.Email, "Session Cancelled", body)

	return models.WithEndTime(booking), nil
}

func (s *BookingService) BookingsByMentor(mentorID uuid.UUID, status string) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByMentor(mentorID, status)
	if err != nil {
		return nil, err
	}
	return withEndTimes(bookings), nil
}

func (s *BookingService) BookingsByStudent(studentID uuid.UUID, status string) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByStudent(studentID, status)
	if err != nil {
		return nil, err
	}
	return withEndTimes(bookings), nil
}

func (s *BookingService) BookingByID(id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.ByID(id)
	if err != nil {
		return nil, err
	}
	return models.WithEndTime(booking), nil
}

func withEndTimes(bookings []models.Booking) []models.Booking {
	for i := range bookings {
		models.WithEndTime(&bookings[i])
	}
	return bookings
}

// notify delivers best effort: the booking state is already persisted, so a
// failed email is logged and swallowed.
func (s *BookingService) notify(name, email, subject, htmlBody string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(name, email, subject, htmlBody); err != nil {
		log.Printf("🔥 Failed to send %q notification to %s: %v", subject, email, err)
	}
}
