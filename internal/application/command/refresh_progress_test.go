package command

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeActivitySource struct {
	expenseDays  []time.Time
	totalGoals   int
	doneGoals    int
	lessons      int
	hasTx        bool
	activeToday  bool
	failSnapshot bool
}

var errSourceDown = errors.New("source down")

func (s *fakeActivitySource) ExpenseDays(ctx context.Context, userID shared.UserID) ([]time.Time, error) {
	return s.expenseDays, nil
}

func (s *fakeActivitySource) CountGoals(ctx context.Context, userID shared.UserID) (int, int, error) {
	if s.failSnapshot {
		return 0, 0, errSourceDown
	}
	return s.totalGoals, s.doneGoals, nil
}

func (s *fakeActivitySource) CountLessonsCompleted(ctx context.Context, userID shared.UserID) (int, error) {
	return s.lessons, nil
}

func (s *fakeActivitySource) HasAnyTransaction(ctx context.Context, userID shared.UserID) (bool, error) {
	return s.hasTx, nil
}

func (s *fakeActivitySource) HasActivityOn(ctx context.Context, userID shared.UserID, day time.Time) (bool, error) {
	return s.activeToday, nil
}

type fakeProfileRepo struct {
	profiles map[shared.UserID]*gamification.Profile
	saves    int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[shared.UserID]*gamification.Profile)}
}

func (r *fakeProfileRepo) GetOrCreate(ctx context.Context, userID shared.UserID) (*gamification.Profile, error) {
	if p, ok := r.profiles[userID]; ok {
		return p.Clone(), nil
	}
	p := gamification.NewProfile(userID)
	r.profiles[userID] = p.Clone()
	return p, nil
}

func (r *fakeProfileRepo) Save(ctx context.Context, profile *gamification.Profile) error {
	r.saves++
	r.profiles[profile.UserID] = profile.Clone()
	return nil
}

func (r *fakeProfileRepo) Top(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	return nil, nil
}

type challengeKey struct {
	userID      shared.UserID
	challengeID int
}

type fakeChallengeRepo struct {
	rows    map[challengeKey]*gamification.ChallengeProgress
	failGet map[int]error
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{
		rows:    make(map[challengeKey]*gamification.ChallengeProgress),
		failGet: make(map[int]error),
	}
}

func (r *fakeChallengeRepo) ListProgress(ctx context.Context, userID shared.UserID) ([]gamification.ChallengeProgress, error) {
	var out []gamification.ChallengeProgress
	for k, row := range r.rows {
		if k.userID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) GetProgress(ctx context.Context, userID shared.UserID, challengeID int) (*gamification.ChallengeProgress, error) {
	if err, ok := r.failGet[challengeID]; ok {
		return nil, err
	}
	row, ok := r.rows[challengeKey{userID, challengeID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeChallengeRepo) CreateProgress(ctx context.Context, progress *gamification.ChallengeProgress) (bool, error) {
	key := challengeKey{progress.UserID, progress.ChallengeID}
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	clone := *progress
	r.rows[key] = &clone
	return true, nil
}

func (r *fakeChallengeRepo) UpdateProgress(ctx context.Context, userID shared.UserID, challengeID int, progress float64) error {
	if row, ok := r.rows[challengeKey{userID, challengeID}]; ok {
		row.Progress = progress
	}
	return nil
}

func (r *fakeChallengeRepo) TryComplete(ctx context.Context, userID shared.UserID, challengeID int, progress float64) (bool, error) {
	row, ok := r.rows[challengeKey{userID, challengeID}]
	if !ok || row.Completed {
		return false, nil
	}
	now := time.Now().UTC()
	row.Progress = progress
	row.Completed = true
	row.CompletedAt = &now
	return true, nil
}

type badgeKey struct {
	userID  shared.UserID
	badgeID int
}

type fakeBadgeRepo struct {
	earned map[badgeKey]bool
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{earned: make(map[badgeKey]bool)}
}

func (r *fakeBadgeRepo) ListEarned(ctx context.Context, userID shared.UserID) ([]gamification.UserBadge, error) {
	var out []gamification.UserBadge
	for k := range r.earned {
		if k.userID == userID {
			out = append(out, gamification.UserBadge{UserID: k.userID, BadgeID: k.badgeID})
		}
	}
	return out, nil
}

func (r *fakeBadgeRepo) TryAward(ctx context.Context, badge *gamification.UserBadge) (bool, error) {
	key := badgeKey{badge.UserID, badge.BadgeID}
	if r.earned[key] {
		return false, nil
	}
	r.earned[key] = true
	return true, nil
}

type fakeSink struct {
	appended []*notification.Notification
	err      error
}

func (s *fakeSink) Append(ctx context.Context, n *notification.Notification) error {
	if s.err != nil {
		return s.err
	}
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

// ══════════════════════════════════════════════════════════════════════════════
// TEST HARNESS
// ══════════════════════════════════════════════════════════════════════════════

type refreshFixture struct {
	source     *fakeActivitySource
	profiles   *fakeProfileRepo
	challenges *fakeChallengeRepo
	badges     *fakeBadgeRepo
	sink       *fakeSink
	publisher  *fakePublisher
	handler    *RefreshProgressHandler
}

func newRefreshFixture(source *fakeActivitySource) *refreshFixture {
	log := logger.New(logger.Options{Output: io.Discard})
	f := &refreshFixture{
		source:     source,
		profiles:   newFakeProfileRepo(),
		challenges: newFakeChallengeRepo(),
		badges:     newFakeBadgeRepo(),
		sink:       &fakeSink{},
		publisher:  &fakePublisher{},
	}
	awarder := NewAwardPointsHandler(f.profiles, f.sink, f.publisher, log)
	recorder := NewRecordActivityHandler(f.profiles, awarder, f.sink, f.publisher, log)
	f.handler = NewRefreshProgressHandler(
		source, f.profiles, f.challenges, f.badges,
		awarder, recorder, f.sink, f.publisher, log,
	)
	return f
}

func (f *refreshFixture) refresh(t *testing.T, userID shared.UserID) *RefreshProgressResult {
	t.Helper()
	result, err := f.handler.Handle(context.Background(), RefreshProgressCommand{
		UserID: userID,
		Reason: RefreshReasonManual,
	})
	assert.NoError(t, err)
	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestRefreshProgress_FirstPassAwardsChallengesAndBadges(t *testing.T) {
	userID := shared.UserID(1)
	f := newRefreshFixture(&fakeActivitySource{
		totalGoals: 1,
		doneGoals:  1,
		hasTx:      true,
	})

	result := f.refresh(t, userID)

	// Challenges 1 (first saving) and 4 (goal completed) have target 1
	assert.Equal(t, []int{1, 4}, result.CompletedChallenges)

	// Badges: first transaction, first goal, goal completed
	assert.Equal(t, []int{1, 2, 3}, result.EarnedBadges)

	// 100 + 500 challenge rewards, badges carry no points
	profile := f.profiles.profiles[userID]
	assert.Equal(t, shared.Points(600), profile.Points)
	assert.Equal(t, shared.Level(1), profile.Level)
}

func TestRefreshProgress_SecondPassIsIdempotent(t *testing.T) {
	userID := shared.UserID(1)
	f := newRefreshFixture(&fakeActivitySource{
		totalGoals: 1,
		doneGoals:  1,
		hasTx:      true,
	})

	f.refresh(t, userID)
	pointsAfterFirst := f.profiles.profiles[userID].Points

	result := f.refresh(t, userID)

	assert.Empty(t, result.CompletedChallenges)
	assert.Empty(t, result.EarnedBadges)
	assert.Equal(t, pointsAfterFirst, f.profiles.profiles[userID].Points)
}

func TestRefreshProgress_CompletedIsMonotonic(t *testing.T) {
	userID := shared.UserID(1)
	source := &fakeActivitySource{
		expenseDays: []time.Time{
			time.Now().UTC().AddDate(0, 0, -6),
			time.Now().UTC().AddDate(0, 0, -5),
			time.Now().UTC().AddDate(0, 0, -4),
			time.Now().UTC().AddDate(0, 0, -3),
			time.Now().UTC().AddDate(0, 0, -2),
			time.Now().UTC().AddDate(0, 0, -1),
			time.Now().UTC(),
		},
		hasTx: true,
	}
	f := newRefreshFixture(source)

	result := f.refresh(t, userID)
	assert.Contains(t, result.CompletedChallenges, 3, "7 consecutive expense days complete the challenge")

	// The streak of raw records collapses, but the completion must survive
	source.expenseDays = []time.Time{time.Now().UTC()}
	f.refresh(t, userID)

	row, err := f.challenges.GetProgress(context.Background(), userID, 3)
	assert.NoError(t, err)
	assert.True(t, row.Completed)
	assert.Equal(t, 7.0, row.Progress, "completed rows are not rewritten")
}

func TestRefreshProgress_PerChallengeFailureIsIsolated(t *testing.T) {
	userID := shared.UserID(1)
	f := newRefreshFixture(&fakeActivitySource{
		totalGoals: 1,
		doneGoals:  1,
		hasTx:      true,
	})
	f.challenges.failGet[1] = errors.New("row lock timeout")

	result := f.refresh(t, userID)

	assert.Equal(t, []int{4}, result.CompletedChallenges, "the healthy challenge still completes")
	assert.Equal(t, shared.Points(500), f.profiles.profiles[userID].Points)
}

func TestRefreshProgress_SnapshotFailureAbortsWithoutWrites(t *testing.T) {
	userID := shared.UserID(1)
	f := newRefreshFixture(&fakeActivitySource{failSnapshot: true})

	_, err := f.handler.Handle(context.Background(), RefreshProgressCommand{
		UserID: userID,
		Reason: RefreshReasonTransaction,
	})

	assert.ErrorIs(t, err, shared.ErrSnapshotReadFailed)
	assert.Equal(t, 0, f.profiles.saves)
	assert.Empty(t, f.challenges.rows)
	assert.Empty(t, f.badges.earned)
}

func TestRefreshProgress_SinkFailureDoesNotFailRefresh(t *testing.T) {
	userID := shared.UserID(1)
	f := newRefreshFixture(&fakeActivitySource{
		totalGoals: 1,
		doneGoals:  1,
		hasTx:      true,
	})
	f.sink.err = errors.New("feed unavailable")

	result := f.refresh(t, userID)

	assert.Equal(t, []int{1, 4}, result.CompletedChallenges)
	assert.Equal(t, shared.Points(600), f.profiles.profiles[userID].Points)
}

func TestRefreshProgress_RecordsStreakOnlyWithTodaysActivity(t *testing.T) {
	userID := shared.UserID(1)
	source := &fakeActivitySource{hasTx: true, activeToday: true}
	f := newRefreshFixture(source)

	result := f.refresh(t, userID)

	assert.True(t, result.ActivityRecorded)
	profile := f.profiles.profiles[userID]
	assert.Equal(t, 1, profile.CurrentStreak)
	// Challenge 1? No goals, so only badge 1; streak day pays 5 points
	assert.Equal(t, shared.Points(5), profile.Points)

	// Second pass the same day: streak already recorded, nothing added
	result = f.refresh(t, userID)
	assert.False(t, result.ActivityRecorded)
	assert.Equal(t, shared.Points(5), f.profiles.profiles[userID].Points)
}

func TestRefreshProgress_NoStreakWithoutTodaysActivity(t *testing.T) {
	userID := shared.UserID(1)
	f := newRefreshFixture(&fakeActivitySource{hasTx: true, activeToday: false})

	result := f.refresh(t, userID)

	assert.False(t, result.ActivityRecorded)
	assert.Equal(t, 0, f.profiles.profiles[userID].CurrentStreak)
}

func TestRefreshProgress_StreakBadgeUsesStreakBeforeTodaysRecord(t *testing.T) {
	userID := shared.UserID(1)
	f := newRefreshFixture(&fakeActivitySource{hasTx: true, activeToday: true})

	// Six-day streak ending yesterday
	seeded := gamification.NewProfile(userID)
	for i := 6; i >= 1; i-- {
		seeded.RecordActivity(time.Now().UTC().AddDate(0, 0, -i))
	}
	assert.Equal(t, 6, seeded.CurrentStreak)
	f.profiles.profiles[userID] = seeded

	result := f.refresh(t, userID)

	// Today's record brings the streak to 7, but the badge pass saw 6
	assert.Equal(t, 7, f.profiles.profiles[userID].CurrentStreak)
	assert.NotContains(t, result.EarnedBadges, 6)

	// The next pass sees the stored 7-day streak and awards the badge
	result = f.refresh(t, userID)
	assert.Contains(t, result.EarnedBadges, 6)
}

func TestRefreshProgress_InvalidUserIDRejected(t *testing.T) {
	f := newRefreshFixture(&fakeActivitySource{})

	_, err := f.handler.Handle(context.Background(), RefreshProgressCommand{UserID: 0})

	assert.Error(t, err)
}
