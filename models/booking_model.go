package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okothmicah/mentor_connect/utils"
)

// Booking lifecycle statuses. A booking is created as "requested" and only
// ever moves through allowedTransitions. "completed" is reserved for a future
// completion trigger; nothing in this service sets it.
const (
	StatusRequested = "requested"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// SessionDurations lists the bookable session lengths in minutes.
var SessionDurations = []int{30, 60, 90}

// CancellationWindow is the minimum lead time before a session starts during
// which it can still be cancelled.
const CancellationWindow = 2 * time.Hour

type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MentorID  uuid.UUID `gorm:"not null;index" json:"mentor_id"`
	StudentID uuid.UUID `gorm:"not null;index" json:"student_id"`

	RequestedDate time.Time `gorm:"type:date;not null" json:"requested_date"`
	StartTime     string    `gorm:"size:5;not null" json:"start_time"`
	Duration      int       `gorm:"not null" json:"duration"`

	Topic        string  `gorm:"size:100;not null" json:"topic"`
	Description  *string `gorm:"size:500" json:"description,omitempty"`
	StudentNotes *string `gorm:"size:500" json:"student_notes,omitempty"`
	MentorNotes  *string `gorm:"size:500" json:"mentor_notes,omitempty"`

	Status             string  `gorm:"size:20;not null;default:'requested'" json:"status"`
	MeetingLink        *string `gorm:"size:255" json:"meeting_link,omitempty"`
	RejectionReason    *string `gorm:"size:200" json:"rejection_reason,omitempty"`
	CancellationReason *string `gorm:"size:200" json:"cancellation_reason,omitempty"`

	// Derived from StartTime + Duration at read time, never persisted.
	EndTime string `gorm:"-" json:"end_time"`

	Mentor  User `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`
	Student User `gorm:"foreignkey:StudentID" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// allowedTransitions is the full lifecycle table. Statuses without an entry
// are terminal.
var allowedTransitions = map[string][]string{
	StatusRequested: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusCancelled, StatusCompleted},
}

type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking status transition from %q to %q", e.From, e.To)
}

// CanTransitionStatus reports whether the lifecycle table allows moving a
// booking from one status to another.
func CanTransitionStatus(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves a booking to the target status, or fails naming both
// states when the lifecycle table forbids the move.
func Transition(b *Booking, to string) error {
	if !CanTransitionStatus(b.Status, to) {
		return &InvalidTransitionError{From: b.Status, To: to}
	}
	b.Status = to
	return nil
}

// BookingStart combines the requested date and start time into the absolute
// instant the session begins.
func BookingStart(b *Booking) time.Time {
	return utils.CombineDateTime(b.RequestedDate, b.StartTime)
}

// CanBeCancelled reports whether a booking may still be cancelled at now.
// Terminal bookings never can; otherwise the session must start at least
// CancellationWindow from now. The state-machine check is applied separately
// on top of this rule.
func CanBeCancelled(b *Booking, now time.Time) bool {
	switch b.Status {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return false
	}
	return BookingStart(b).Sub(now) >= CancellationWindow
}

// IsActiveStatus reports whether a booking still occupies its time slot for
// conflict purposes. Rejected, cancelled and completed bookings never conflict.
func IsActiveStatus(status string) bool {
	return status == StatusRequested || status == StatusApproved
}

// WithEndTime fills the derived end time on a booking before it is returned
// to a caller.
func WithEndTime(b *Booking) *Booking {
	b.EndTime = utils.SessionEndTime(b.StartTime, b.Duration)
	return b
}
