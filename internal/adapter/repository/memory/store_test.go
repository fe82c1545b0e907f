package memory

import (
	"context"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
)

func TestWatchlistAddCreatesDocumentAndUnions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Watchlists()

	_, err := repo.Get(ctx, "u1")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, repo.Add(ctx, "u1", "a1"))
	require.NoError(t, repo.Add(ctx, "u1", "a1"))

	ids, exists := store.WatchlistIDs("u1")
	assert.True(t, exists)
	assert.Equal(t, []string{"a1"}, ids)

	require.NoError(t, repo.Remove(ctx, "u1", "a1"))
	ids, _ = store.WatchlistIDs("u1")
	assert.Empty(t, ids)

	assert.NoError(t, repo.Remove(ctx, "missing", "a1"))
}

func TestWatchDeliversInitialAndUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var got []*entity.Watchlist
	sub, err := store.Watchlists().Watch(ctx, "u1", func(w *entity.Watchlist, err error) {
		require.NoError(t, err)
		got = append(got, w)
	})
	require.NoError(t, err)

	require.NoError(t, store.Watchlists().Add(ctx, "u1", "a1"))
	sub.Stop()
	sub.Stop()
	require.NoError(t, store.Watchlists().Add(ctx, "u1", "a2"))

	require.Len(t, got, 2)
	assert.Nil(t, got[0])
	assert.Equal(t, []string{"a1"}, got[1].AnimalIDs)
	assert.Equal(t, 0, store.ActiveSubscriptions())
}

func TestAnimalsWatchAllOrderedByKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Animals().Create(ctx, &entity.Animal{Key: "b", Name: "Rex"}))
	require.NoError(t, store.Animals().Create(ctx, &entity.Animal{Key: "a", Name: "Tom"}))

	var snapshots [][]*entity.Animal
	sub, err := store.Animals().WatchAll(ctx, func(animals []*entity.Animal, err error) {
		snapshots = append(snapshots, animals)
	})
	require.NoError(t, err)
	defer sub.Stop()

	require.NoError(t, store.Animals().Update(ctx, "a", entity.AnimalUpdate{Breed: "Tabby"}))
	require.NoError(t, store.Animals().Delete(ctx, "b"))

	require.Len(t, snapshots, 3)
	assert.Equal(t, "a", snapshots[0][0].Key)
	assert.Equal(t, "b", snapshots[0][1].Key)
	assert.Equal(t, "Tabby", snapshots[1][0].Breed)
	assert.NotNil(t, snapshots[1][0].UpdatedAt)
	assert.Len(t, snapshots[2], 1)

	err = store.Animals().Update(ctx, "b", entity.AnimalUpdate{Name: "x"})
	assert.True(t, errors.IsNotFound(err))
}

func TestChatsWatchByFieldAndAppend(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var ownerSide, userSide [][]*entity.Conversation
	subA, _ := store.Chats().WatchByField(ctx, repository.ParticipantOwner, "owner@x.io", func(c []*entity.Conversation, err error) {
		ownerSide = append(ownerSide, c)
	})
	defer subA.Stop()
	subB, _ := store.Chats().WatchByField(ctx, repository.ParticipantUser, "me@x.io", func(c []*entity.Conversation, err error) {
		userSide = append(userSide, c)
	})
	defer subB.Stop()

	conv := &entity.Conversation{OwnerID: "owner@x.io", UserID: "me@x.io"}
	require.NoError(t, store.Chats().Create(ctx, conv))
	require.NotEmpty(t, conv.ID)

	msg := entity.Message{ID: "m1", Text: "hi", CreatedAt: time.Now()}
	require.NoError(t, store.Chats().AppendMessage(ctx, conv.ID, msg))
	require.NoError(t, store.Chats().AppendMessage(ctx, conv.ID, msg))

	require.Len(t, ownerSide, 3)
	assert.Empty(t, ownerSide[0])
	assert.Len(t, ownerSide[2][0].Messages, 1)
	assert.Len(t, userSide, 3)

	err := store.Chats().AppendMessage(ctx, "nope", msg)
	assert.True(t, errors.IsNotFound(err))
}

func TestFailNextAndBreakSubscriptions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	boom := pkgerrors.New("unavailable")
	store.FailNext(OpWatchlistAdd, boom)
	assert.ErrorIs(t, store.Watchlists().Add(ctx, "u1", "a1"), boom)
	assert.NoError(t, store.Watchlists().Add(ctx, "u1", "a1"))

	var lastErr error
	_, err := store.Animals().WatchAll(ctx, func(_ []*entity.Animal, err error) {
		lastErr = err
	})
	require.NoError(t, err)

	store.BreakSubscriptions(boom)
	assert.ErrorIs(t, lastErr, boom)
	assert.Equal(t, 0, store.ActiveSubscriptions())
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := store.Users().Watch(ctx, "u1", func(*entity.Profile, error) {})
	require.NoError(t, err)
	assert.Equal(t, 1, store.ActiveSubscriptions())

	cancel()
	assert.Eventually(t, func() bool {
		return store.ActiveSubscriptions() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestUsersGetByEmailAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Users().Create(ctx, &entity.Profile{ID: "u1", Email: "me@x.io"}))

	p, err := store.Users().GetByEmail(ctx, "me@x.io")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, entity.ProfileSourceRemote, p.Source)

	require.NoError(t, store.Users().UpdateFields(ctx, "u1", entity.ProfileUpdate{PhoneNumber: "+15551234567", Address: "Main St"}))
	p, err = store.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", p.PhoneNumber)
	assert.Equal(t, "Main St", p.UpdatedUserData.Address)
	assert.Equal(t, "me@x.io", p.Email)

	_, err = store.Users().GetByEmail(ctx, "nobody@x.io")
	assert.True(t, errors.IsNotFound(err))
}
