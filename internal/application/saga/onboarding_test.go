package saga

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/finzen-app/finzen-engine/internal/application/command"
	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/internal/domain/user"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

type fakeUserRepo struct {
	users  map[shared.Email]*user.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[shared.Email]*user.User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if _, ok := r.users[u.Email]; ok {
		return shared.ErrAlreadyExists
	}
	u.ID = shared.UserID(r.nextID)
	r.nextID++
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email shared.Email) (*user.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) ListRecentlyActive(ctx context.Context, limit int) ([]shared.UserID, error) {
	return nil, nil
}

type fakeProfileRepo struct {
	profiles map[shared.UserID]*gamification.Profile
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[shared.UserID]*gamification.Profile)}
}

func (r *fakeProfileRepo) GetOrCreate(ctx context.Context, userID shared.UserID) (*gamification.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	if p, ok := r.profiles[userID]; ok {
		return p, nil
	}
	p := gamification.NewProfile(userID)
	r.profiles[userID] = p
	return p, nil
}

func (r *fakeProfileRepo) Save(ctx context.Context, profile *gamification.Profile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeProfileRepo) Top(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	return nil, nil
}

type fakeSink struct {
	appended []*notification.Notification
}

func (s *fakeSink) Append(ctx context.Context, n *notification.Notification) error {
	s.appended = append(s.appended, n)
	return nil
}

type fakePublisher struct {
	events []shared.Event
}

func (p *fakePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func newSaga(users *fakeUserRepo, profiles *fakeProfileRepo, sink *fakeSink, publisher *fakePublisher) *OnboardingSaga {
	log := logger.New(logger.Options{Output: io.Discard})
	register := command.NewRegisterUserHandler(users, sink, bcrypt.MinCost, log)
	return NewOnboardingSaga(register, profiles, publisher, log)
}

func TestOnboardingSaga_Success(t *testing.T) {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	sink := &fakeSink{}
	publisher := &fakePublisher{}

	s := newSaga(users, profiles, sink, publisher)

	result, err := s.Execute(context.Background(), OnboardingInput{
		Email:    "ana@example.com",
		Password: "secret123",
		Name:     "Ana",
	})

	assert.NoError(t, err)
	assert.True(t, result.UserID.IsValid())
	assert.Equal(t, "ana@example.com", result.Email)
	assert.NotNil(t, result.Profile)
	assert.Equal(t, shared.Points(0), result.Profile.Points)

	// Welcome notification written by the register command
	assert.Len(t, sink.appended, 1)
	assert.Equal(t, notification.NotificationTypeWelcome, sink.appended[0].Type)

	// Registration event plus initial refresh request published by the saga
	assert.Len(t, publisher.events, 2)
	assert.Equal(t, shared.EventUserRegistered, publisher.events[0].EventType())
	assert.Equal(t, shared.EventRefreshRequested, publisher.events[1].EventType())
}

func TestOnboardingSaga_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	s := newSaga(users, profiles, &fakeSink{}, &fakePublisher{})

	input := OnboardingInput{Email: "ana@example.com", Password: "secret123"}

	_, err := s.Execute(context.Background(), input)
	assert.NoError(t, err)

	_, err = s.Execute(context.Background(), input)
	assert.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	var obErr *OnboardingError
	assert.ErrorAs(t, err, &obErr)
	assert.Equal(t, StepRegisterUser, obErr.Step)
	assert.False(t, obErr.IsRetryable())
}

func TestOnboardingSaga_ValidationFailure(t *testing.T) {
	s := newSaga(newFakeUserRepo(), newFakeProfileRepo(), &fakeSink{}, &fakePublisher{})

	_, err := s.Execute(context.Background(), OnboardingInput{Email: "ana@example.com"})

	var obErr *OnboardingError
	assert.ErrorAs(t, err, &obErr)
	assert.Equal(t, StepValidateInput, obErr.Step)
	assert.False(t, obErr.IsRetryable())
}

func TestOnboardingSaga_ProfileFailureIsNonFatal(t *testing.T) {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	profiles.err = errors.New("database down")
	publisher := &fakePublisher{}

	s := newSaga(users, profiles, &fakeSink{}, publisher)

	result, err := s.Execute(context.Background(), OnboardingInput{
		Email:    "ana@example.com",
		Password: "secret123",
	})

	assert.NoError(t, err, "registration must survive a profile initialization failure")
	assert.Nil(t, result.Profile)
	assert.Len(t, publisher.events, 2)
}
