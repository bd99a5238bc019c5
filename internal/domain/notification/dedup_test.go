package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeDedupStore struct {
	appended  []*Notification
	recent    map[string]bool
	checkErr  error
	lastCheck time.Duration
}

func newFakeDedupStore() *fakeDedupStore {
	return &fakeDedupStore{recent: make(map[string]bool)}
}

func (s *fakeDedupStore) Append(ctx context.Context, n *Notification) error {
	s.appended = append(s.appended, n)
	return nil
}

func (s *fakeDedupStore) ExistsRecent(ctx context.Context, recipientID RecipientID, t NotificationType, title string, window time.Duration) (bool, error) {
	s.lastCheck = window
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return s.recent[title], nil
}

func welcomeNote(title string) *Notification {
	return &Notification{
		ID:          NotificationID("6cbe2a0e-7e4a-4a86-9c9f-000000000001"),
		Type:        NotificationTypeWelcome,
		RecipientID: RecipientID(1),
		Title:       title,
		Message:     "hola",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDedupSink_AppendsFirstOccurrence(t *testing.T) {
	store := newFakeDedupStore()
	sink := NewDedupSink(store, time.Hour)

	err := sink.Append(context.Background(), welcomeNote("👋 ¡Bienvenido a FinZen!"))

	assert.NoError(t, err)
	assert.Len(t, store.appended, 1)
	assert.Equal(t, time.Hour, store.lastCheck)
}

func TestDedupSink_SkipsRecentDuplicate(t *testing.T) {
	store := newFakeDedupStore()
	store.recent["🔥 ¡Racha Semanal!"] = true
	sink := NewDedupSink(store, time.Hour)

	err := sink.Append(context.Background(), welcomeNote("🔥 ¡Racha Semanal!"))

	assert.NoError(t, err)
	assert.Empty(t, store.appended, "duplicate inside the window is dropped")
}

func TestDedupSink_CheckFailureStillAppends(t *testing.T) {
	store := newFakeDedupStore()
	store.checkErr = errors.New("connection refused")
	sink := NewDedupSink(store, time.Hour)

	err := sink.Append(context.Background(), welcomeNote("👋 ¡Bienvenido a FinZen!"))

	assert.NoError(t, err)
	assert.Len(t, store.appended, 1, "a failed dedup check must not lose the notification")
}

func TestDedupSink_DefaultWindow(t *testing.T) {
	store := newFakeDedupStore()
	sink := NewDedupSink(store, 0)

	_ = sink.Append(context.Background(), welcomeNote("👋 ¡Bienvenido a FinZen!"))

	assert.Equal(t, DefaultDedupWindow, store.lastCheck)
}
