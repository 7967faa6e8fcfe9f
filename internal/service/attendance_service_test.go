package service

import (
	"context"
	"testing"
	"time"

	"attendance_tracker/internal/geo"
	"attendance_tracker/internal/model"
	"attendance_tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWorkplace = geo.Point{Latitude: 23.355639517775323, Longitude: 85.35911217785096}

type fakeSessionRepo struct {
	sessions []model.AttendanceSession
	nextID   int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{nextID: 1}
}

func (r *fakeSessionRepo) openIndex(employeeID int) int {
	for i := range r.sessions {
		if r.sessions[i].EmployeeID == employeeID && r.sessions[i].CheckOutTime == nil {
			return i
		}
	}
	return -1
}

func (r *fakeSessionRepo) Insert(_ context.Context, session *model.AttendanceSession) error {
	if r.openIndex(session.EmployeeID) >= 0 {
		return repository.ErrOpenSessionExists
	}
	session.ID = r.nextID
	r.nextID++
	r.sessions = append(r.sessions, *session)
	return nil
}

func (r *fakeSessionRepo) FindOpenByEmployee(_ context.Context, employeeID int) (*model.AttendanceSession, error) {
	i := r.openIndex(employeeID)
	if i < 0 {
		return nil, nil
	}
	copied := r.sessions[i]
	return &copied, nil
}

func (r *fakeSessionRepo) CloseOpen(_ context.Context, employeeID int) (*model.AttendanceSession, error) {
	i := r.openIndex(employeeID)
	if i < 0 {
		return nil, nil
	}
	now := time.Now()
	r.sessions[i].CheckOutTime = &now
	copied := r.sessions[i]
	return &copied, nil
}

func (r *fakeSessionRepo) FindByEmployee(_ context.Context, employeeID int) ([]model.AttendanceSession, error) {
	var out []model.AttendanceSession
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].EmployeeID == employeeID {
			out = append(out, r.sessions[i])
		}
	}
	return out, nil
}

func newAttendanceFixture() (AttendanceService, *fakeSessionRepo) {
	repo := newFakeSessionRepo()
	svc := NewAttendanceService(repo, testWorkplace, 200)
	return svc, repo
}

func TestCheckIn_AtWorkplace(t *testing.T) {
	svc, repo := newAttendanceFixture()

	session, err := svc.CheckIn(context.Background(), 1, testWorkplace)

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, model.SessionStateOpen, session.State())
	assert.Equal(t, 0.0, session.DistanceMeters)
	assert.Len(t, repo.sessions, 1)
}

func TestCheckIn_InsideRadiusStoresDistance(t *testing.T) {
	svc, _ := newAttendanceFixture()

	// Roughly 100m north of the workplace, well inside the 200m radius.
	observed := geo.Point{Latitude: testWorkplace.Latitude + 0.0009, Longitude: testWorkplace.Longitude}
	session, err := svc.CheckIn(context.Background(), 1, observed)

	require.NoError(t, err)
	assert.Greater(t, session.DistanceMeters, 50.0)
	assert.Less(t, session.DistanceMeters, 200.0)
}

func TestCheckIn_OutsideGeofence(t *testing.T) {
	svc, repo := newAttendanceFixture()

	// Roughly 1.1km north of the workplace.
	observed := geo.Point{Latitude: testWorkplace.Latitude + 0.01, Longitude: testWorkplace.Longitude}
	session, err := svc.CheckIn(context.Background(), 1, observed)

	assert.ErrorIs(t, err, ErrOutsideGeofence)
	assert.Nil(t, session)
	assert.Empty(t, repo.sessions)
}

func TestCheckIn_SecondWhileOpen(t *testing.T) {
	svc, repo := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 1, testWorkplace)
	require.NoError(t, err)

	session, err := svc.CheckIn(ctx, 1, testWorkplace)

	assert.ErrorIs(t, err, ErrSessionAlreadyOpen)
	assert.Nil(t, session)
	assert.Len(t, repo.sessions, 1)
}

func TestCheckIn_IndependentEmployees(t *testing.T) {
	svc, repo := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 1, testWorkplace)
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, 2, testWorkplace)
	require.NoError(t, err)

	assert.Len(t, repo.sessions, 2)
}

func TestCheckOut_ClosesOpenSession(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	opened, err := svc.CheckIn(ctx, 1, testWorkplace)
	require.NoError(t, err)

	closed, err := svc.CheckOut(ctx, 1)

	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.Equal(t, opened.ID, closed.ID)
	assert.Equal(t, model.SessionStateClosed, closed.State())

	// Back to no-session: a fresh check-in opens a new cycle.
	current, err := svc.CurrentSession(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, current)

	reopened, err := svc.CheckIn(ctx, 1, testWorkplace)
	require.NoError(t, err)
	assert.NotEqual(t, opened.ID, reopened.ID)
}

func TestCheckOut_NoOpenSession(t *testing.T) {
	svc, repo := newAttendanceFixture()

	session, err := svc.CheckOut(context.Background(), 1)

	assert.ErrorIs(t, err, ErrNoOpenSession)
	assert.Nil(t, session)
	assert.Empty(t, repo.sessions)
}

func TestCheckOut_Twice(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 1, testWorkplace)
	require.NoError(t, err)
	_, err = svc.CheckOut(ctx, 1)
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, 1)
	assert.ErrorIs(t, err, ErrNoOpenSession)
}

func TestCurrentSession_ReportsOpen(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	opened, err := svc.CheckIn(ctx, 1, testWorkplace)
	require.NoError(t, err)

	current, err := svc.CurrentSession(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, opened.ID, current.ID)
	assert.Equal(t, model.SessionStateOpen, current.State())
}

func TestHistory_NewestFirst(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 1, testWorkplace)
	require.NoError(t, err)
	_, err = svc.CheckOut(ctx, 1)
	require.NoError(t, err)
	second, err := svc.CheckIn(ctx, 1, testWorkplace)
	require.NoError(t, err)

	history, err := svc.History(ctx, 1)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, model.SessionStateOpen, history[0].State())
	assert.Equal(t, model.SessionStateClosed, history[1].State())
}

func TestLocate(t *testing.T) {
	svc, _ := newAttendanceFixture()

	inside := svc.Locate(testWorkplace)
	assert.True(t, inside.Inside)
	assert.Equal(t, 0.0, inside.DistanceMeters)

	outside := svc.Locate(geo.Point{Latitude: testWorkplace.Latitude + 0.01, Longitude: testWorkplace.Longitude})
	assert.False(t, outside.Inside)
	assert.Greater(t, outside.DistanceMeters, 200.0)
}
