package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a contiguous [Start, End) window on a single day, "HH:MM" 24h.
type TimeSlot struct {
	Start string `json:"start" validate:"required,datetime=15:04"`
	End   string `json:"end" validate:"required,datetime=15:04"`
}

// DaySchedule holds the recurring bookable windows for one weekday
// (0 = Sunday). Days a mentor is unavailable simply have no entry.
type DaySchedule struct {
	Weekday int        `json:"weekday" validate:"min=0,max=6"`
	Slots   []TimeSlot `json:"slots" validate:"required,min=1,dive"`
}

type WeeklySchedule []DaySchedule

// DateOverride replaces the weekly windows for one calendar date. An empty
// slot list blocks the whole day.
type DateOverride struct {
	Date   string     `json:"date" validate:"required,datetime=2006-01-02"`
	Slots  []TimeSlot `json:"slots" validate:"dive"`
	Reason *string    `json:"reason,omitempty" validate:"omitempty,max=200"`
}

type DateOverrides []DateOverride

// The schedule shapes are stored as jsonb columns.

func (w WeeklySchedule) Value() (driver.Value, error) { return json.Marshal(w) }

func (w *WeeklySchedule) Scan(value interface{}) error {
	return scanJSON(value, w)
}

func (o DateOverrides) Value() (driver.Value, error) { return json.Marshal(o) }

func (o *DateOverrides) Scan(value interface{}) error {
	return scanJSON(value, o)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported column type for jsonb scan")
	}
}

// Availability is a mentor's declared bookable schedule: one row per mentor,
// written by the mentor and read-only from the booking workflow's side.
type Availability struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MentorID uuid.UUID `gorm:"not null;unique" json:"mentor_id"`

	WeeklySchedule WeeklySchedule `gorm:"type:jsonb" json:"weekly_schedule"`
	DateOverrides  DateOverrides  `gorm:"type:jsonb" json:"date_overrides"`

	Timezone string `gorm:"size:64;not null;default:'UTC'" json:"timezone"`

	MinAdvanceHours int `gorm:"not null;default:24" json:"min_advance_hours"`
	MaxAdvanceDays  int `gorm:"not null;default:30" json:"max_advance_days"`
	// BufferMinutes is accepted and stored but not yet enforced by conflict
	// detection.
	BufferMinutes int `gorm:"not null;default:15" json:"buffer_minutes"`

	Mentor User `gorm:"foreignkey:MentorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	DefaultMinAdvanceHours = 24
	DefaultMaxAdvanceDays  = 30
	DefaultBufferMinutes   = 15
)
