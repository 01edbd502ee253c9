package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type interviewFixture struct {
	apps      *memApplications
	store     *memInterviews
	svc       *InterviewService
	events    *recordingEmitter
	candidate Identity
	staff     Identity
	app       *Application
}

func newInterviewFixture(t *testing.T) *interviewFixture {
	t.Helper()
	f := &interviewFixture{
		apps:      newMemApplications(),
		store:     newMemInterviews(),
		events:    &recordingEmitter{},
		candidate: candidateIdentity(),
		staff:     staffIdentity(),
	}
	f.svc = NewInterviewService(f.store, f.apps, NewGate(DefaultTable()), FixedClock(testNow), f.events)

	app := &Application{
		ID:          uuid.New(),
		CandidateID: f.candidate.ID,
		Status:      StatusUnderReview,
		Version:     1,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	require.NoError(t, f.apps.Create(context.Background(), app))
	f.app = app
	return f
}

func (f *interviewFixture) createParams(at time.Time) CreateInterviewParams {
	return CreateInterviewParams{
		ApplicationID: f.app.ID,
		InterviewAt:   at,
		Duration:      45,
		Location:      LocationOnline,
		MeetingLink:   "https://meet.example.com/abc",
		Interviewers:  []uuid.UUID{f.staff.ID},
		Type:          "technical",
	}
}

// seed inserts an interview directly, bypassing the future-time check so past
// interviews can be set up.
func (f *interviewFixture) seed(t *testing.T, status InterviewStatus, at time.Time) *Interview {
	t.Helper()
	iv := &Interview{
		ID:            uuid.New(),
		ApplicationID: f.app.ID,
		CandidateID:   f.candidate.ID,
		Status:        status,
		InterviewAt:   at,
		Duration:      45,
		Location:      LocationOnline,
		MeetingLink:   "https://meet.example.com/abc",
		Version:       1,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	require.NoError(t, f.store.Create(context.Background(), iv))
	return iv
}

func TestCreateInterview_Scheduled(t *testing.T) {
	f := newInterviewFixture(t)

	iv, err := f.svc.Create(context.Background(), f.staff, f.createParams(testNow.Add(48*time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, InterviewScheduled, iv.Status)
	assert.Equal(t, f.candidate.ID, iv.CandidateID, "candidate is taken from the application, not the request")
	assert.Equal(t, int64(1), iv.Version)
	assert.Equal(t, []string{EventInterviewCreated}, f.events.names())
}

func TestCreateInterview_CandidateForbidden(t *testing.T) {
	f := newInterviewFixture(t)

	_, err := f.svc.Create(context.Background(), f.candidate, f.createParams(testNow.Add(48*time.Hour)))
	var forbidden *ErrForbidden
	require.ErrorAs(t, err, &forbidden)
}

func TestCreateInterview_UnknownLocation(t *testing.T) {
	f := newInterviewFixture(t)
	p := f.createParams(testNow.Add(48 * time.Hour))
	p.Location = "carrier-pigeon"

	_, err := f.svc.Create(context.Background(), f.staff, p)
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "location", validation.Field)
}

func TestCreateInterview_LocationFieldCoupling(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInterviewParams)
		field  string
	}{
		{"online without link", func(p *CreateInterviewParams) {
			p.Location = LocationOnline
			p.MeetingLink = "   "
		}, "meeting_link"},
		{"office without address", func(p *CreateInterviewParams) {
			p.Location = LocationOffice
			p.OfficeAddress = ""
		}, "office_address"},
		{"phone without number", func(p *CreateInterviewParams) {
			p.Location = LocationPhone
			p.PhoneNumber = ""
		}, "phone_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInterviewFixture(t)
			p := f.createParams(testNow.Add(48 * time.Hour))
			tt.mutate(&p)

			_, err := f.svc.Create(context.Background(), f.staff, p)
			var validation *ErrValidation
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestCreateInterview_RequiresFutureTime(t *testing.T) {
	f := newInterviewFixture(t)

	for _, at := range []time.Time{testNow, testNow.Add(-time.Minute)} {
		_, err := f.svc.Create(context.Background(), f.staff, f.createParams(at))
		var validation *ErrValidation
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "interview_at", validation.Field)
	}
}

func TestCreateInterview_RequiresPositiveDuration(t *testing.T) {
	f := newInterviewFixture(t)
	p := f.createParams(testNow.Add(48 * time.Hour))
	p.Duration = 0

	_, err := f.svc.Create(context.Background(), f.staff, p)
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "duration_minutes", validation.Field)
}

func TestCreateInterview_ClosedApplication(t *testing.T) {
	f := newInterviewFixture(t)
	f.apps.setStatus(f.app.ID, StatusWithdrawn)

	_, err := f.svc.Create(context.Background(), f.staff, f.createParams(testNow.Add(48*time.Hour)))
	var transition *ErrInvalidTransition
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, string(StatusWithdrawn), transition.From)
}

func TestCreateInterview_ApplicationNotFound(t *testing.T) {
	f := newInterviewFixture(t)
	p := f.createParams(testNow.Add(48 * time.Hour))
	p.ApplicationID = uuid.New()

	_, err := f.svc.Create(context.Background(), f.staff, p)
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestConfirm_Scheduled(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(48*time.Hour))

	confirmed, err := f.svc.Confirm(context.Background(), f.candidate, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, InterviewConfirmed, confirmed.Status)
	assert.Equal(t, []string{EventInterviewConfirmed}, f.events.names())
}

func TestConfirm_OwnershipIsolation(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(48*time.Hour))

	other := candidateIdentity()
	_, err := f.svc.Confirm(context.Background(), other, iv.ID)
	var forbidden *ErrForbidden
	require.ErrorAs(t, err, &forbidden)

	// The record is untouched.
	stored, gerr := f.store.GetByID(context.Background(), iv.ID)
	require.NoError(t, gerr)
	assert.Equal(t, InterviewScheduled, stored.Status)
}

func TestConfirm_RequiresScheduled(t *testing.T) {
	for _, status := range []InterviewStatus{InterviewConfirmed, InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow} {
		t.Run(string(status), func(t *testing.T) {
			f := newInterviewFixture(t)
			iv := f.seed(t, status, testNow.Add(48*time.Hour))

			_, err := f.svc.Confirm(context.Background(), f.candidate, iv.ID)
			var transition *ErrInvalidTransition
			require.ErrorAs(t, err, &transition)
		})
	}
}

func TestConfirm_PastInterview(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(-time.Hour))

	_, err := f.svc.Confirm(context.Background(), f.candidate, iv.ID)
	var transition *ErrInvalidTransition
	require.ErrorAs(t, err, &transition)
}

func TestReschedule_OutsideWindow(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewConfirmed, testNow.Add(72*time.Hour))

	updated, err := f.svc.RequestReschedule(context.Background(), f.candidate, iv.ID, "conflict with a work trip")
	require.NoError(t, err)

	assert.Equal(t, InterviewRescheduled, updated.Status)
	assert.Equal(t, "conflict with a work trip", updated.RescheduleReason)
	require.NotNil(t, updated.RescheduleRequestedBy)
	assert.Equal(t, f.candidate.ID, *updated.RescheduleRequestedBy)
	require.NotNil(t, updated.RescheduleRequestedAt)
	assert.Equal(t, []string{EventInterviewRescheduleRequested}, f.events.names())
}

func TestReschedule_WindowBoundary(t *testing.T) {
	tests := []struct {
		name  string
		ahead time.Duration
		legal bool
	}{
		{"just outside the window", RescheduleWindow + time.Second, true},
		{"exactly at the window", RescheduleWindow, false},
		{"just inside the window", RescheduleWindow - time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInterviewFixture(t)
			iv := f.seed(t, InterviewScheduled, testNow.Add(tt.ahead))

			_, err := f.svc.RequestReschedule(context.Background(), f.candidate, iv.ID, "conflict with a work trip")
			if tt.legal {
				require.NoError(t, err)
				return
			}
			var transition *ErrInvalidTransition
			require.ErrorAs(t, err, &transition)
		})
	}
}

func TestReschedule_ReasonTooShort(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(72*time.Hour))

	for _, reason := range []string{"busy", "", "   padded   ", "123456789"} {
		_, err := f.svc.RequestReschedule(context.Background(), f.candidate, iv.ID, reason)
		var validation *ErrValidation
		require.ErrorAs(t, err, &validation, "reason %q must be rejected", reason)
		assert.Equal(t, "reason", validation.Field)
	}

	// Exactly ten trimmed characters passes.
	_, err := f.svc.RequestReschedule(context.Background(), f.candidate, iv.ID, " 1234567890 ")
	require.NoError(t, err)
}

func TestReschedule_ReasonCheckedBeforeOwnership(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(72*time.Hour))

	_, err := f.svc.RequestReschedule(context.Background(), candidateIdentity(), iv.ID, "short")
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestReschedule_OwnershipIsolation(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(72*time.Hour))

	_, err := f.svc.RequestReschedule(context.Background(), candidateIdentity(), iv.ID, "conflict with a work trip")
	var forbidden *ErrForbidden
	require.ErrorAs(t, err, &forbidden)
}

func TestReschedule_TerminalStatus(t *testing.T) {
	for _, status := range []InterviewStatus{InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow} {
		t.Run(string(status), func(t *testing.T) {
			f := newInterviewFixture(t)
			iv := f.seed(t, status, testNow.Add(72*time.Hour))

			_, err := f.svc.RequestReschedule(context.Background(), f.candidate, iv.ID, "conflict with a work trip")
			var transition *ErrInvalidTransition
			require.ErrorAs(t, err, &transition)
		})
	}
}

func TestCancel_WithAuditTrail(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewConfirmed, testNow.Add(48*time.Hour))

	cancelled, err := f.svc.Cancel(context.Background(), f.staff, iv.ID, "interviewer unavailable")
	require.NoError(t, err)

	assert.Equal(t, InterviewCancelled, cancelled.Status)
	assert.Equal(t, "interviewer unavailable", cancelled.CancelledReason)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, f.staff.ID, *cancelled.CancelledBy)
	assert.Equal(t, []string{EventInterviewCancelled}, f.events.names())
}

func TestCancel_RequiresReason(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(48*time.Hour))

	_, err := f.svc.Cancel(context.Background(), f.staff, iv.ID, "   ")
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestCancel_CandidateForbidden(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(48*time.Hour))

	_, err := f.svc.Cancel(context.Background(), f.candidate, iv.ID, "can't make it")
	var forbidden *ErrForbidden
	require.ErrorAs(t, err, &forbidden)
}

func TestCancel_TerminalStatus(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewCompleted, testNow.Add(-time.Hour))

	_, err := f.svc.Cancel(context.Background(), f.staff, iv.ID, "late cancellation")
	var transition *ErrInvalidTransition
	require.ErrorAs(t, err, &transition)
}

func TestComplete_WithFeedbackAndScore(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewConfirmed, testNow.Add(-time.Hour))
	score := 85

	done, err := f.svc.Complete(context.Background(), f.staff, iv.ID, "strong systems knowledge", &score)
	require.NoError(t, err)

	assert.Equal(t, InterviewCompleted, done.Status)
	assert.Equal(t, "strong systems knowledge", done.Feedback)
	require.NotNil(t, done.Score)
	assert.Equal(t, 85, *done.Score)
	assert.Equal(t, []string{EventInterviewCompleted}, f.events.names())
}

func TestComplete_ScoreOutOfRange(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewConfirmed, testNow.Add(-time.Hour))

	for _, score := range []int{-1, 101} {
		s := score
		_, err := f.svc.Complete(context.Background(), f.staff, iv.ID, "", &s)
		var validation *ErrValidation
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "score", validation.Field)
	}
}

func TestComplete_RequiresActiveInterview(t *testing.T) {
	for _, status := range []InterviewStatus{InterviewCancelled, InterviewRescheduled, InterviewNoShow, InterviewCompleted} {
		t.Run(string(status), func(t *testing.T) {
			f := newInterviewFixture(t)
			iv := f.seed(t, status, testNow.Add(-time.Hour))

			_, err := f.svc.Complete(context.Background(), f.staff, iv.ID, "", nil)
			var transition *ErrInvalidTransition
			require.ErrorAs(t, err, &transition)
		})
	}
}

func TestMarkNoShow(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewConfirmed, testNow.Add(-time.Hour))

	marked, err := f.svc.MarkNoShow(context.Background(), f.staff, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, InterviewNoShow, marked.Status)
	assert.Equal(t, []string{EventInterviewNoShow}, f.events.names())
}

func TestMarkNoShow_BeforeInterviewTime(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(time.Hour))

	_, err := f.svc.MarkNoShow(context.Background(), f.staff, iv.ID)
	var transition *ErrInvalidTransition
	require.ErrorAs(t, err, &transition)
}

func TestAttachFeedback(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(48*time.Hour))

	updated, err := f.svc.AttachFeedback(context.Background(), f.staff, iv.ID, "asked solid questions", nil)
	require.NoError(t, err)
	assert.Equal(t, "asked solid questions", updated.Feedback)
	assert.Equal(t, InterviewScheduled, updated.Status, "feedback must not change status")
}

func TestAttachFeedback_RequiresContent(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(48*time.Hour))

	_, err := f.svc.AttachFeedback(context.Background(), f.staff, iv.ID, "  ", nil)
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestInterviewQueries(t *testing.T) {
	f := newInterviewFixture(t)
	past := f.seed(t, InterviewCompleted, testNow.Add(-48*time.Hour))
	soon := f.seed(t, InterviewConfirmed, testNow.Add(24*time.Hour))
	later := f.seed(t, InterviewScheduled, testNow.Add(96*time.Hour))
	cancelled := f.seed(t, InterviewCancelled, testNow.Add(48*time.Hour))

	all, err := f.svc.MyInterviews(context.Background(), f.candidate)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, later.ID, all[0].ID, "newest first")

	upcoming, err := f.svc.Upcoming(context.Background(), f.candidate)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, soon.ID, upcoming[0].ID, "earliest first")
	assert.Equal(t, later.ID, upcoming[1].ID)

	pastList, err := f.svc.Past(context.Background(), f.candidate)
	require.NoError(t, err)
	require.Len(t, pastList, 2)
	assert.Equal(t, cancelled.ID, pastList[0].ID)
	assert.Equal(t, past.ID, pastList[1].ID)

	next, err := f.svc.NextInterview(context.Background(), f.candidate)
	require.NoError(t, err)
	assert.Equal(t, soon.ID, next.ID)
}

func TestNextInterview_NoneUpcoming(t *testing.T) {
	f := newInterviewFixture(t)
	f.seed(t, InterviewCompleted, testNow.Add(-48*time.Hour))

	_, err := f.svc.NextInterview(context.Background(), f.candidate)
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestSchedule_GroupsByDay(t *testing.T) {
	f := newInterviewFixture(t)
	dayTwoLate := f.seed(t, InterviewScheduled, time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC))
	dayOne := f.seed(t, InterviewCompleted, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	dayTwoEarly := f.seed(t, InterviewScheduled, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC))

	days, err := f.svc.Schedule(context.Background(), f.staff, f.app.ID)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "2025-06-02", days[0].Date)
	require.Len(t, days[0].Interviews, 1)
	assert.Equal(t, dayOne.ID, days[0].Interviews[0].ID)

	assert.Equal(t, "2025-06-03", days[1].Date)
	require.Len(t, days[1].Interviews, 2)
	assert.Equal(t, dayTwoEarly.ID, days[1].Interviews[0].ID)
	assert.Equal(t, dayTwoLate.ID, days[1].Interviews[1].ID)
}

func TestSchedule_CandidateForbidden(t *testing.T) {
	f := newInterviewFixture(t)

	_, err := f.svc.Schedule(context.Background(), f.candidate, f.app.ID)
	var forbidden *ErrForbidden
	require.ErrorAs(t, err, &forbidden)
}

func TestConfirm_ConcurrentModificationAfterRetry(t *testing.T) {
	f := newInterviewFixture(t)
	iv := f.seed(t, InterviewScheduled, testNow.Add(48*time.Hour))

	f.store.beforeUpdate = func(s *memInterviews) {
		s.bumpVersion(iv.ID)
	}

	_, err := f.svc.Confirm(context.Background(), f.candidate, iv.ID)
	var conflict *ErrConcurrentModification
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, iv.ID, conflict.ID)
}

// A reschedule followed by a replacement interview: the old record is closed
// with its audit trail and the new one starts over at scheduled.
func TestRescheduleThenReplacementFlow(t *testing.T) {
	f := newInterviewFixture(t)
	original := f.seed(t, InterviewConfirmed, testNow.Add(72*time.Hour))

	closed, err := f.svc.RequestReschedule(context.Background(), f.candidate, original.ID, "family emergency abroad")
	require.NoError(t, err)
	assert.Equal(t, InterviewRescheduled, closed.Status)

	replacement, err := f.svc.Create(context.Background(), f.staff, f.createParams(testNow.Add(120*time.Hour)))
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, replacement.ID)
	assert.Equal(t, InterviewScheduled, replacement.Status)

	all, err := f.svc.MyInterviews(context.Background(), f.candidate)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
