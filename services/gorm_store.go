package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/okothmicah/mentor_connect/models"
)

// GORM-backed store implementations. These are the only writers of the
// bookings table; everything else goes through the services above.

type GormBookingStore struct {
	db *gorm.DB
}

func NewGormBookingStore(db *gorm.DB) *GormBookingStore {
	return &GormBookingStore{db: db}
}

// Create inserts a booking inside a transaction that first takes a row lock
// on the mentor, then re-runs the conflict query. The service-level conflict
// check is only a fast path; without this two concurrent requests for
// overlapping slots could both pass it and both commit.
func (st *GormBookingStore) Create(b *models.Booking) error {
	return st.db.Transaction(func(tx *gorm.DB) error {
		var mentor models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&mentor, "id = ?", b.MentorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMentorNotFound
			}
			return err
		}

		existing, err := activeForMentorOnDate(tx, b.MentorID, b.RequestedDate)
		if err != nil {
			return err
		}
		if FindConflict(existing, b.StartTime, b.Duration) != nil {
			return ErrTimeConflict
		}

		return tx.Create(b).Error
	})
}

func (st *GormBookingStore) Save(b *models.Booking) error {
	return st.db.Save(b).Error
}

func (st *GormBookingStore) ByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := st.db.Preload("Mentor").Preload("Student").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (st *GormBookingStore) ByIDForMentor(id, mentorID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := st.db.Preload("Mentor").Preload("Student").
		First(&booking, "id = ? AND mentor_id = ?", id, mentorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (st *GormBookingStore) ByIDForParticipant(id, userID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := st.db.Preload("Mentor").Preload("Student").
		First(&booking, "id = ? AND (mentor_id = ? OR student_id = ?)", id, userID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (st *GormBookingStore) ActiveForMentorOnDate(mentorID uuid.UUID, date time.Time) ([]models.Booking, error) {
	return activeForMentorOnDate(st.db, mentorID, date)
}

func activeForMentorOnDate(tx *gorm.DB, mentorID uuid.UUID, date time.Time) ([]models.Booking, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var bookings []models.Booking
	err := tx.Where(
		"mentor_id = ? AND requested_date >= ? AND requested_date < ? AND status IN ?",
		mentorID, dayStart, dayEnd,
		[]string{models.StatusRequested, models.StatusApproved},
	).Find(&bookings).Error
	return bookings, err
}

func (st *GormBookingStore) ListByMentor(mentorID uuid.UUID, status string) ([]models.Booking, error) {
	return st.list("mentor_id = ?", mentorID, status)
}

func (st *GormBookingStore) ListByStudent(studentID uuid.UUID, status string) ([]models.Booking, error) {
	return st.list("student_id = ?", studentID, status)
}

func (st *GormBookingStore) list(cond string, id uuid.UUID, status string) ([]models.Booking, error) {
	query := st.db.Preload("Mentor").Preload("Student").Where(cond, id)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var bookings []models.Booking
	err := query.Order("requested_date asc, start_time asc").Find(&bookings).Error
	return bookings, err
}

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (st *GormUserStore) ByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := st.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

type GormAvailabilityStore struct {
	db *gorm.DB
}

func NewGormAvailabilityStore(db *gorm.DB) *GormAvailabilityStore {
	return &GormAvailabilityStore{db: db}
}

func (st *GormAvailabilityStore) ByMentor(mentorID uuid.UUID) (*models.Availability, error) {
	var av models.Availability
	if err := st.db.First(&av, "mentor_id = ?", mentorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}
	return &av, nil
}

func (st *GormAvailabilityStore) Upsert(av *models.Availability) error {
	return st.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "mentor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"weekly_schedule", "date_overrides", "timezone",
			"min_advance_hours", "max_advance_days", "buffer_minutes", "updated_at",
		}),
	}).Create(av).Error
}
