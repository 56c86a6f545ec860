package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"

	"pottytracker/internal/database"
	"pottytracker/internal/logging"
	"pottytracker/internal/models"
)

func newTestStore(t *testing.T) (*StorageRepository, *observer.ObservedLogs) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, logs := logging.NewObserved()
	return NewStorageRepository(db, logger), logs
}

func TestStorageRawRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GetRaw(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetRaw(ctx, "k", `{"a":1}`))
	require.NoError(t, store.SetRaw(ctx, "k", `{"a":2}`))
	raw, ok, err := store.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":2}`, raw)

	require.NoError(t, store.Remove(ctx, "k"))
	require.NoError(t, store.Remove(ctx, "k"))
	_, ok, err = store.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorageEntriesAndReplace(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetRaw(ctx, KeyAccounts, `[]`))
	require.NoError(t, store.Replace(ctx, map[string]string{
		KeyAccounts: `[{"id":"u1","email":"a@x.com","name":"A","familyId":"f1"}]`,
		KeyChildren: `{"f1":[{"id":"c1","name":"Mia","familyId":"f1"}]}`,
	}))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	children, err := NewChildRepository(store).ListByFamily(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Mia", children[0].Name)
}

func TestCorruptDocumentReadsAsEmpty(t *testing.T) {
	store, logs := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetRaw(ctx, KeyEvents, `{not json`))

	events := NewEventRepository(store)
	list, err := events.ListByChild(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1, logs.FilterMessage("discarding unreadable stored document").Len())

	// The next write starts from the empty default
	_, err = events.Create(ctx, models.PottyEvent{ID: "e1", ChildID: "c1", Timestamp: 1})
	require.NoError(t, err)
	list, err = events.ListByChild(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAccountRepository(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	accounts := NewAccountRepository(store)

	require.NoError(t, accounts.Create(ctx, models.User{ID: "u1", Email: "a@x.com", FamilyID: "f1"}))
	err := accounts.Create(ctx, models.User{ID: "u2", Email: "A@X.COM", FamilyID: "f2"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	user, err := accounts.GetByEmail(ctx, " A@x.com ")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)

	user, err = accounts.GetByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	list, err := accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSessionRepository(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	sessions := NewSessionRepository(store)

	user, err := sessions.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, sessions.Set(ctx, &models.User{ID: "u1", Email: "a@x.com"}))
	user, err = sessions.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)

	require.NoError(t, sessions.Set(ctx, nil))
	user, err = sessions.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, store.SetRaw(ctx, KeySession, `{broken`))
	user, err = sessions.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, user, "an unreadable session reads as signed out")
}

func TestChildRepository(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	children := NewChildRepository(store)

	require.NoError(t, children.Create(ctx, models.Child{ID: "c1", Name: "Mia", FamilyID: "f1"}))
	require.NoError(t, children.Create(ctx, models.Child{ID: "c2", Name: "Leo", FamilyID: "f2"}))

	list, err := children.ListByFamily(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, []models.Child{{ID: "c1", Name: "Mia", FamilyID: "f1"}}, list)

	list, err = children.ListByFamily(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)

	child, err := children.GetByID(ctx, "c2")
	require.NoError(t, err)
	require.NotNil(t, child)
	assert.Equal(t, "f2", child.FamilyID)
}

func TestEventRepository(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	events := NewEventRepository(store)

	count, err := events.Create(ctx, models.PottyEvent{ID: "e1", ChildID: "c1", Timestamp: 100, Type: models.EventMeal})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = events.Create(ctx, models.PottyEvent{ID: "e2", ChildID: "c1", Timestamp: 200})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	updated, err := events.UpdateTimestamp(ctx, "e1", 150)
	require.NoError(t, err)
	assert.Equal(t, models.PottyEvent{ID: "e1", ChildID: "c1", Timestamp: 150, Type: models.EventMeal}, *updated)

	_, err = events.UpdateTimestamp(ctx, "nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, events.Delete(ctx, "e2"))
	assert.ErrorIs(t, events.Delete(ctx, "e2"), ErrNotFound)

	list, err := events.ListByChild(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "e1", list[0].ID)

	ev, err := events.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, int64(150), ev.Timestamp)
}

func TestInviteRepository(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	invites := NewInviteRepository(store)
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	inv := models.InviteToken{Token: "ABC123", FamilyID: "f1", InviteeEmail: "b@x.com", ExpiresAt: now.Add(time.Hour).UnixMilli()}
	require.NoError(t, invites.Create(ctx, inv))
	assert.ErrorIs(t, invites.Create(ctx, inv), ErrAlreadyExists)

	found, err := invites.GetByToken(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "f1", found.FamilyID)

	consumed, err := invites.Consume(ctx, "ABC123", "u2", now)
	require.NoError(t, err)
	assert.Equal(t, "u2", consumed.UsedBy)

	_, err = invites.Consume(ctx, "ABC123", "u3", now)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, invites.Release(ctx, "ABC123"))
	_, err = invites.Consume(ctx, "ABC123", "u3", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound, "expired tokens cannot be consumed")

	_, err = invites.Consume(ctx, "ZZZZZZ", "u3", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInviteRepositoryDeleteExpired(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	invites := NewInviteRepository(store)
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	usedAt := now.Add(-2 * time.Hour).UnixMilli()

	for _, inv := range []models.InviteToken{
		{Token: "OLD111", ExpiresAt: now.Add(-time.Hour).UnixMilli()},
		{Token: "NEW222", ExpiresAt: now.Add(time.Hour).UnixMilli()},
		{Token: "USED33", ExpiresAt: now.Add(-time.Hour).UnixMilli(), UsedAt: &usedAt, UsedBy: "u1"},
		{Token: "FOREVR"},
	} {
		require.NoError(t, invites.Create(ctx, inv))
	}

	removed, err := invites.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	left, err := invites.List(ctx)
	require.NoError(t, err)
	tokens := make([]string, 0, len(left))
	for _, inv := range left {
		tokens = append(tokens, inv.Token)
	}
	assert.Equal(t, []string{"NEW222", "USED33", "FOREVR"}, tokens)
}

func TestConcurrentWritesAreNotLost(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	events := NewEventRepository(store)

	const writers = 8
	const perWriter = 5

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := events.Create(ctx, models.PottyEvent{
					ID:        fmt.Sprintf("e-%d-%d", w, i),
					ChildID:   "c1",
					Timestamp: int64(w*100 + i),
				})
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	list, err := events.ListByChild(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, writers*perWriter)
}

func TestFirstWritesFromSeparateStoresAreNotLost(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Two stores share a database but not their key locks, like two processes.
	stores := []*StorageRepository{store, NewStorageRepository(store.db, nil)}

	const perStore = 10
	var wg sync.WaitGroup
	for s, st := range stores {
		wg.Add(1)
		go func(s int, invites *InviteRepository) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				err := invites.Create(ctx, models.InviteToken{
					Token:        fmt.Sprintf("T%d%04d", s, i),
					FamilyID:     "f1",
					InviteeEmail: "b@x.com",
					CreatedAt:    time.Now().UnixMilli(),
				})
				assert.NoError(t, err)
			}
		}(s, NewInviteRepository(st))
	}
	wg.Wait()

	list, err := NewInviteRepository(store).List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(stores)*perStore)
}

func TestFailedUpdateLeavesKeyAbsent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := updateJSON(ctx, store, KeyInvites, func(v *[]models.InviteToken) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, ok, err := store.GetRaw(ctx, KeyInvites)
	require.NoError(t, err)
	assert.False(t, ok)
}
