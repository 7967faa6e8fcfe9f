package service

import (
	"context"
	"testing"
	"time"

	"attendance_tracker/internal/model"
	"attendance_tracker/internal/repository"
	"attendance_tracker/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeRepo struct {
	byMobile map[string]*model.Employee
	nextID   int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byMobile: make(map[string]*model.Employee), nextID: 1}
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	if _, ok := r.byMobile[e.Mobile]; ok {
		return repository.ErrDuplicateMobile
	}
	return r.Upsert(ctx, e)
}

func (r *fakeEmployeeRepo) Upsert(_ context.Context, e *model.Employee) error {
	if existing, ok := r.byMobile[e.Mobile]; ok {
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
	} else {
		e.ID = r.nextID
		r.nextID++
	}
	copied := *e
	r.byMobile[e.Mobile] = &copied
	return nil
}

func (r *fakeEmployeeRepo) FindByMobile(_ context.Context, mobile string) (*model.Employee, error) {
	e, ok := r.byMobile[mobile]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id int) (*model.Employee, error) {
	for _, e := range r.byMobile {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

type recordingSender struct {
	sent []string
}

func (s *recordingSender) SendOTP(_ context.Context, mobile, code string) error {
	s.sent = append(s.sent, mobile+":"+code)
	return nil
}

func newVerificationFixture(t *testing.T) (VerificationService, repository.ChallengeStore, *fakeEmployeeRepo, *recordingSender) {
	t.Helper()
	store := repository.NewMemoryChallengeStore(0)
	t.Cleanup(func() { _ = store.Close() })
	employees := newFakeEmployeeRepo()
	sender := &recordingSender{}
	jwtUtil := utils.NewJWTUtil("test-secret", 7*24*time.Hour)
	svc := NewVerificationService(store, employees, sender, jwtUtil, 5*time.Minute)
	return svc, store, employees, sender
}

func TestRequestChallenge_StoresAndSends(t *testing.T) {
	svc, store, _, sender := newVerificationFixture(t)
	ctx := context.Background()

	code, err := svc.RequestChallenge(ctx, "9876543210")

	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Len(t, sender.sent, 1)

	ch, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, code, ch.Code)
	assert.False(t, ch.Verified)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), ch.ExpiresAt, 5*time.Second)
}

func TestRequestChallenge_NormalizesMobile(t *testing.T) {
	svc, store, _, _ := newVerificationFixture(t)
	ctx := context.Background()

	_, err := svc.RequestChallenge(ctx, "+91 98765 43210")

	require.NoError(t, err)
	ch, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.NotNil(t, ch)
}

func TestRequestChallenge_InvalidMobile(t *testing.T) {
	svc, _, _, _ := newVerificationFixture(t)

	_, err := svc.RequestChallenge(context.Background(), "12345")

	assert.ErrorIs(t, err, utils.ErrInvalidMobile)
}

func TestRequestChallenge_AlreadyRegistered(t *testing.T) {
	svc, _, employees, sender := newVerificationFixture(t)
	ctx := context.Background()

	require.NoError(t, employees.Upsert(ctx, &model.Employee{Mobile: "9876543210", Name: "Asha"}))

	_, err := svc.RequestChallenge(ctx, "9876543210")

	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Empty(t, sender.sent)
}

func TestRequestChallenge_SecondRequestInvalidatesFirstCode(t *testing.T) {
	svc, _, _, _ := newVerificationFixture(t)
	ctx := context.Background()

	first, err := svc.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)
	second, err := svc.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, svc.VerifyChallenge(ctx, "9876543210", first), ErrCodeMismatch)
	}
	assert.NoError(t, svc.VerifyChallenge(ctx, "9876543210", second))
}

func TestVerifyChallenge_NotRequested(t *testing.T) {
	svc, _, _, _ := newVerificationFixture(t)

	err := svc.VerifyChallenge(context.Background(), "9876543210", "123456")

	assert.ErrorIs(t, err, ErrChallengeNotRequested)
}

func TestVerifyChallenge_Expired(t *testing.T) {
	svc, store, _, _ := newVerificationFixture(t)
	ctx := context.Background()

	// Issued at T, verified at T+5m+1s: one second past the deadline.
	issued := time.Now().Add(-5*time.Minute - time.Second)
	require.NoError(t, store.Set(ctx, &model.PhoneChallenge{
		Mobile:    "9876543210",
		Code:      "123456",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(5 * time.Minute),
	}))

	err := svc.VerifyChallenge(ctx, "9876543210", "123456")
	assert.ErrorIs(t, err, ErrChallengeExpired)

	// The stale record is deleted, so a retry reports not-requested.
	err = svc.VerifyChallenge(ctx, "9876543210", "123456")
	assert.ErrorIs(t, err, ErrChallengeNotRequested)
}

func TestVerifyChallenge_Mismatch(t *testing.T) {
	svc, store, _, _ := newVerificationFixture(t)
	ctx := context.Background()

	code, err := svc.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, svc.VerifyChallenge(ctx, "9876543210", wrong), ErrCodeMismatch)

	// A mismatch must not consume the challenge.
	ch, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.False(t, ch.Verified)
}

func TestVerifyChallenge_MarksVerified(t *testing.T) {
	svc, store, _, _ := newVerificationFixture(t)
	ctx := context.Background()

	code, err := svc.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)

	require.NoError(t, svc.VerifyChallenge(ctx, "9876543210", code))

	ch, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.True(t, ch.Verified)
}

func TestCompleteRegistration_NotVerified(t *testing.T) {
	svc, _, _, _ := newVerificationFixture(t)
	ctx := context.Background()

	_, err := svc.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)

	// Challenged but never verified.
	_, _, err = svc.CompleteRegistration(ctx, "9876543210", "Asha", "asha@example.com", "secret123")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestCompleteRegistration_NoChallenge(t *testing.T) {
	svc, _, _, _ := newVerificationFixture(t)

	_, _, err := svc.CompleteRegistration(context.Background(), "9876543210", "Asha", "asha@example.com", "secret123")

	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestCompleteRegistration_RoundTrip(t *testing.T) {
	svc, _, employees, _ := newVerificationFixture(t)
	ctx := context.Background()

	code, err := svc.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyChallenge(ctx, "9876543210", code))

	employee, token, err := svc.CompleteRegistration(ctx, "9876543210", "Asha", "asha@example.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, employee)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "secret123", employee.PasswordHash)

	// Identity retrievable by phone with the submitted profile.
	stored, err := employees.FindByMobile(ctx, "9876543210")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Asha", stored.Name)
	assert.Equal(t, "asha@example.com", stored.Email)
	assert.True(t, utils.CheckPasswordHash("secret123", stored.PasswordHash))

	// The challenge is gone once registration completes.
	err = svc.VerifyChallenge(ctx, "9876543210", code)
	assert.ErrorIs(t, err, ErrChallengeNotRequested)
}

func TestGenerateOTP_Range(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}
