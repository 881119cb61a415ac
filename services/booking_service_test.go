package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okothmicah/mentor_connect/models"
	"github.com/okothmicah/mentor_connect/utils"
)

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) Create(b *models.Booking) error {
	return m.Called(b).Error(0)
}

func (m *mockBookingStore) Save(b *models.Booking) error {
	return m.Called(b).Error(0)
}

func (m *mockBookingStore) ByID(id uuid.UUID) (*models.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingStore) ByIDForMentor(id, mentorID uuid.UUID) (*models.Booking, error) {
	args := m.Called(id, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingStore) ByIDForParticipant(id, userID uuid.UUID) (*models.Booking, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingStore) ActiveForMentorOnDate(mentorID uuid.UUID, date time.Time) ([]models.Booking, error) {
	args := m.Called(mentorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingStore) ListByMentor(mentorID uuid.UUID, status string) ([]models.Booking, error) {
	args := m.Called(mentorID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingStore) ListByStudent(studentID uuid.UUID, status string) ([]models.Booking, error) {
	args := m.Called(studentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) ByID(id uuid.UUID) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(toName, toEmail, subject, htmlBody string) error {
	return m.Called(toName, toEmail, subject, htmlBody).Error(0)
}

var testNow = time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

func newTestService() (*BookingService, *mockBookingStore, *mockUserStore, *mockNotifier) {
	bookings := new(mockBookingStore)
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	svc := NewBookingService(bookings, users, notifier)
	svc.now = func() time.Time { return testNow }
	return svc, bookings, users, notifier
}

func testMentor() *models.User {
	return &models.User{ID: uuid.New(), FullName: "Grace Otieno", Email: "grace@example.com", Role: models.RoleMentor}
}

func testStudent() *models.User {
	return &models.User{ID: uuid.New(), FullName: "Brian Kip", Email: "brian@example.com", Role: models.RoleStudent}
}

func TestCreateBookingRequestHappyPath(t *testing.T) {
	svc, bookings, users, notifier := newTestService()
	mentor, student := testMentor(), testStudent()
	tomorrow := testNow.AddDate(0, 0, 1)

	users.On("ByID", mentor.ID).Return(mentor, nil)
	users.On("ByID", student.ID).Return(student, nil)
	bookings.On("ActiveForMentorOnDate", mentor.ID, mock.AnythingOfType("time.Time")).Return([]models.Booking{}, nil)
	bookings.On("Create", mock.AnythingOfType("*models.Booking")).Return(nil)
	notifier.On("Send", mentor.FullName, mentor.Email, mock.Anything, mock.Anything).Return(nil)

	booking, err := svc.CreateBookingRequest(student.ID, CreateBookingInput{
		MentorID:      mentor.ID,
		RequestedDate: tomorrow,
		StartTime:     "14:00",
		Duration:      60,
		Topic:         "React help",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusRequested, booking.Status)
	assert.Equal(t, "14:00", booking.StartTime)
	assert.Equal(t, "15:00", booking.EndTime)
	assert.Equal(t, "React help", booking.Topic)
	assert.True(t, booking.RequestedDate.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
	bookings.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateBookingRequestMentorNotFound(t *testing.T) {
	svc, _, users, _ := newTestService()
	mentorID := uuid.New()

	users.On("ByID", mentorID).Return(nil, ErrUserNotFound)

	_, err := svc.CreateBookingRequest(uuid.New(), CreateBookingInput{
		MentorID:      mentorID,
		RequestedDate: testNow.AddDate(0, 0, 1),
		StartTime:     "14:00",
		Duration:      60,
		Topic:         "React help",
	})
	assert.ErrorIs(t, err, ErrMentorNotFound)
}

func TestCreateBookingRequestRejectsNonMentor(t *testing.T) {
	svc, _, users, _ := newTestService()
	notAMentor := testStudent()

	users.On("ByID", notAMentor.ID).Return(notAMentor, nil)

	_, err := svc.CreateBookingRequest(uuid.New(), CreateBookingInput{
		MentorID:      notAMentor.ID,
		RequestedDate: testNow.AddDate(0, 0, 1),
		StartTime:     "14:00",
		Duration:      60,
		Topic:         "React help",
	})
	assert.ErrorIs(t, err, ErrMentorNotFound)
}

func TestCreateBookingRequestRejectsPastDates(t *testing.T) {
	svc, bookings, users, _ := newTestService()
	mentor := testMentor()
	users.On("ByID", mentor.ID).Return(mentor, nil)

	for _, date := range []time.Time{
		testNow.AddDate(0, 0, -1), // yesterday
		testNow,                   // today is not strictly in the future
	} {
		_, err := svc.CreateBookingRequest(uuid.New(), CreateBookingInput{
			MentorID:      mentor.ID,
			RequestedDate: date,
			StartTime:     "14:00",
			Duration:      60,
			Topic:         "React help",
		})
		assert.ErrorIs(t, err, ErrPastDate)
	}
	bookings.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateBookingRequestConflicts(t *testing.T) {
	svc, bookings, users, notifier := newTestService()
	mentor, student := testMentor(), testStudent()
	tomorrow := testNow.AddDate(0, 0, 1)

	existing := []models.Booking{
		{MentorID: mentor.ID, StartTime: "14:00", Duration: 60, Status: models.StatusApproved},
	}

	users.On("ByID", mentor.ID).Return(mentor, nil)
	users.On("ByID", student.ID).Return(student, nil)
	bookings.On("ActiveForMentorOnDate", mentor.ID, mock.AnythingOfType("time.Time")).Return(existing, nil)

	t.Run("overlapping request fails", func(t *testing.T) {
		_, err := svc.CreateBookingRequest(student.ID, CreateBookingInput{
			MentorID:      mentor.ID,
			RequestedDate: tomorrow,
			StartTime:     "14:30",
			Duration:      30,
			Topic:         "React help",
		})
		assert.ErrorIs(t, err, ErrTimeConflict)
		bookings.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("back-to-back request succeeds", func(t *testing.T) {
		bookings.On("Create", mock.AnythingOfType("*models.Booking")).Return(nil)
		notifier.On("Send", mentor.FullName, mentor.Email, mock.Anything, mock.Anything).Return(nil)

		booking, err := svc.CreateBookingRequest(student.ID, CreateBookingInput{
			MentorID:      mentor.ID,
			RequestedDate: tomorrow,
			StartTime:     "15:00",
			Duration:      30,
			Topic:         "React help",
		})
		require.NoError(t, err)
		assert.Equal(t, "15:30", booking.EndTime)
	})
}

// Two concurrent requests can both pass the service-level conflict check; the
// store re-checks under a mentor row lock and is the authority.
func TestCreateBookingRequestSurfacesStoreLevelConflict(t *testing.T) {
	svc, bookings, users, _ := newTestService()
	mentor, student := testMentor(), testStudent()

	users.On("ByID", mentor.ID).Return(mentor, nil)
	users.On("ByID", student.ID).Return(student, nil)
	bookings.On("ActiveForMentorOnDate", mentor.ID, mock.AnythingOfType("time.Time")).Return([]models.Booking{}, nil)
	bookings.On("Create", mock.AnythingOfType("*models.Booking")).Return(ErrTimeConflict)

	_, err := svc.CreateBookingRequest(student.ID, CreateBookingInput{
		MentorID:      mentor.ID,
		RequestedDate: testNow.AddDate(0, 0, 1),
		StartTime:     "14:00",
		Duration:      60,
		Topic:         "React help",
	})
	assert.ErrorIs(t, err, ErrTimeConflict)
}

func TestCreateBookingRequestSurvivesNotifierFailure(t *testing.T) {
	svc, bookings, users, notifier := newTestService()
	mentor, student := testMentor(), testStudent()

	users.On("ByID", mentor.ID).Return(mentor, nil)
	users.On("ByID", student.ID).Return(student, nil)
	bookings.On("ActiveForMentorOnDate", mentor.ID, mock.AnythingOfType("time.Time")).Return([]models.Booking{}, nil)
	bookings.On("Create", mock.AnythingOfType("*models.Booking")).Return(nil)
	notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	booking, err := svc.CreateBookingRequest(student.ID, CreateBookingInput{
		MentorID:      mentor.ID,
		RequestedDate: testNow.AddDate(0, 0, 1),
		StartTime:     "14:00",
		Duration:      30,
		Topic:         "React help",
	})
	require.NoError(t, err, "a failed notification must not fail the booking")
	assert.Equal(t, models.StatusRequested, booking.Status)
}

func requestedBooking(mentor, student *models.User, date time.Time, start string) *models.Booking {
	return &models.Booking{
		ID:            uuid.New(),
		MentorID:      mentor.ID,
		StudentID:     student.ID,
		RequestedDate: date,
		StartTime:     start,
		Duration:      60,
		Topic:         "React help",
		Status:        models.StatusRequested,
		Mentor:        *mentor,
		Student:       *student,
	}
}

func TestApproveBooking(t *testing.T) {
	svc, bookings, _, notifier := newTestService()
	mentor, student := testMentor(), testStudent()
	booking := requestedBooking(mentor, student, testNow.AddDate(0, 0, 1), "14:00")

	bookings.On("ByIDForMentor", booking.ID, mentor.ID).Return(booking, nil)
	bookings.On("Save", booking).Return(nil)
	notifier.On("Send", student.FullName, student.Email, mock.Anything, mock.Anything).Return(nil)

	notes := "bring your error logs"
	updated, err := svc.ApproveBooking(booking.ID, mentor.ID, ApproveBookingInput{
		MeetingLink: "https://meet.example.com/abc",
		MentorNotes: &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.MeetingLink)
	assert.Equal(t, "https://meet.example.com/abc", *updated.MeetingLink)
	require.NotNil(t, updated.MentorNotes)
	assert.Equal(t, notes, *updated.MentorNotes)
	notifier.AssertExpectations(t)
}

func TestApproveBookingUnknownOrForeignBooking(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	bookingID, mentorID := uuid.New(), uuid.New()

	bookings.On("ByIDForMentor", bookingID, mentorID).Return(nil, ErrBookingNotFound)

	_, err := svc.ApproveBooking(bookingID, mentorID, ApproveBookingInput{MeetingLink: "https://meet.example.com/abc"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRejectThenApproveFailsTransition(t *testing.T) {
	svc, bookings, _, notifier := newTestService()
	mentor, student := testMentor(), testStudent()
	booking := requestedBooking(mentor, student, testNow.AddDate(0, 0, 1), "14:00")

	bookings.On("ByIDForMentor", booking.ID, mentor.ID).Return(booking, nil)
	bookings.On("Save", booking).Return(nil)
	notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	rejected, err := svc.RejectBooking(booking.ID, mentor.ID, "unavailable")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "unavailable", *rejected.RejectionReason)

	_, err = svc.ApproveBooking(booking.ID, mentor.ID, ApproveBookingInput{MeetingLink: "https://meet.example.com/abc"})
	var transition *models.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.StatusRejected, transition.From)
	assert.Equal(t, models.StatusApproved, transition.To)
}

func TestCancelBookingInsideWindowFailsPolicy(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	mentor, student := testMentor(), testStudent()

	// Session starts 90 minutes from now.
	booking := requestedBooking(mentor, student, utils.StartOfDay(testNow), "13:30")
	booking.Status = models.StatusApproved

	bookings.On("ByIDForParticipant", booking.ID, student.ID).Return(booking, nil)

	_, err := svc.CancelBooking(booking.ID, student.ID, nil)
	assert.ErrorIs(t, err, ErrCancellationWindow)
	bookings.AssertNotCalled(t, "Save", mock.Anything)
}

func TestCancelBookingOutsideWindowSucceeds(t *testing.T) {
	svc, bookings, _, notifier := newTestService()
	mentor, student := testMentor(), testStudent()

	// Session starts 3 hours from now; the student cancels, the mentor is told.
	booking := requestedBooking(mentor, student, utils.StartOfDay(testNow), "15:00")
	booking.Status = models.StatusApproved

	bookings.On("ByIDForParticipant", booking.ID, student.ID).Return(booking, nil)
	bookings.On("Save", booking).Return(nil)
	notifier.On("Send", mentor.FullName, mentor.Email, mock.Anything, mock.Anything).Return(nil)

	reason := "something came up"
	cancelled, err := svc.CancelBooking(booking.ID, student.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, reason, *cancelled.CancellationReason)
	notifier.AssertExpectations(t)
}

func TestCancelBookingByMentorNotifiesStudent(t *testing.T) {
	svc, bookings, _, notifier := newTestService()
	mentor, student := testMentor(), testStudent()

	booking := requestedBooking(mentor, student, testNow.AddDate(0, 0, 2), "10:00")
	bookings.On("ByIDForParticipant", booking.ID, mentor.ID).Return(booking, nil)
	bookings.On("Save", booking).Return(nil)
	notifier.On("Send", student.FullName, student.Email, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CancelBooking(booking.ID, mentor.ID, nil)
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestCancelTerminalBookingFailsTransition(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	mentor, student := testMentor(), testStudent()

	booking := requestedBooking(mentor, student, testNow.AddDate(0, 0, 2), "10:00")
	booking.Status = models.StatusRejected

	bookings.On("ByIDForParticipant", booking.ID, student.ID).Return(booking, nil)

	_, err := svc.CancelBooking(booking.ID, student.ID, nil)
	var transition *models.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.StatusRejected, transition.From)
	assert.Equal(t, models.StatusCancelled, transition.To)
}

func TestListingsDeriveEndTimes(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	mentorID := uuid.New()

	stored := []models.Booking{
		{StartTime: "09:00", Duration: 30, Status: models.StatusRequested},
		{StartTime: "14:00", Duration: 90, Status: models.StatusApproved},
	}
	bookings.On("ListByMentor", mentorID, "approved").Return(stored, nil)

	listed, err := svc.BookingsByMentor(mentorID, "approved")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "09:30", listed[0].EndTime)
	assert.Equal(t, "15:30", listed[1].EndTime)
}

func TestFindConflict(t *testing.T) {
	existing := []models.Booking{
		{StartTime: "14:00", Duration: 60, Status: models.StatusApproved},
		{StartTime: "16:00", Duration: 30, Status: models.StatusCancelled},
	}

	tests := []struct {
		name     string
		start    string
		duration int
		conflict bool
	}{
		{"request starts inside existing window", "14:30", 30, true},
		{"request ends inside existing window", "13:30", 60, true},
		{"request fully contains existing window", "13:45", 90, true},
		{"request contained by existing window", "14:15", 30, true},
		{"identical window", "14:00", 60, true},
		{"back-to-back after", "15:00", 30, false},
		{"back-to-back before", "13:30", 30, false},
		{"cancelled bookings never conflict", "16:00", 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindConflict(existing, tt.start, tt.duration)
			if tt.conflict {
				assert.NotNil(t, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}
