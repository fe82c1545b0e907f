package usecase

import (
	"context"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petadopt/internal/adapter/repository/memory"
	"petadopt/internal/domain/entity"
	"petadopt/pkg/errors"
	"petadopt/pkg/utils"
)

func TestCatalogMirrorIsIdempotent(t *testing.T) {
	s := NewCatalogSynchronizer(memory.NewStore().Animals(), nil)

	snapshot := []*entity.Animal{
		{Key: "a1", Name: "Rex"},
		{Key: "a2", Name: "Tom"},
	}
	s.apply(snapshot, nil)
	first := s.List()
	s.apply(snapshot, nil)
	second := s.List()

	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
	assert.False(t, s.Loading())
}

func TestCatalogFollowsStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	updates := 0
	s := NewCatalogSynchronizer(store.Animals(), func([]*entity.Animal) { updates++ })

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, 1, store.ActiveSubscriptions())
	assert.Empty(t, s.List())
	assert.False(t, s.Loading())

	animal := &entity.Animal{Name: "Rex"}
	require.NoError(t, store.Animals().Create(ctx, animal))

	got, ok := s.Get(animal.Key)
	require.True(t, ok)
	assert.Equal(t, "Rex", got.Name)

	// callers get copies
	got.Name = "mutated"
	again, _ := s.Get(animal.Key)
	assert.Equal(t, "Rex", again.Name)

	require.NoError(t, store.Animals().Delete(ctx, animal.Key))
	assert.Empty(t, s.List())
	assert.Equal(t, 3, updates)

	s.Stop()
	assert.Equal(t, 0, store.ActiveSubscriptions())
}

func TestCatalogSubscriptionError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := NewCatalogSynchronizer(store.Animals(), nil)
	require.NoError(t, s.Start(ctx))
	require.NoError(t, store.Animals().Create(ctx, &entity.Animal{Key: "a1"}))

	store.BreakSubscriptions(pkgerrors.New("connection reset"))

	assert.Error(t, s.Err())
	assert.False(t, s.Loading())
	// last good snapshot stays readable, no further updates arrive
	assert.Len(t, s.List(), 1)
	require.NoError(t, store.Animals().Create(ctx, &entity.Animal{Key: "a2"}))
	assert.Len(t, s.List(), 1)
}

func newCatalogFixture(t *testing.T) (*CatalogUseCase, *memory.Store, *fakeMedia) {
	t.Helper()
	store := memory.NewStore()
	catalog := NewCatalogSynchronizer(store.Animals(), nil)
	require.NoError(t, catalog.Start(context.Background()))
	t.Cleanup(catalog.Stop)

	media := &fakeMedia{}
	profiles := staticProfiles{
		"owner": {ID: "owner", Email: "owner@x.io", DisplayName: "Owner", PhotoURL: "https://img/o.png"},
		"other": {ID: "other", Email: "other@x.io"},
	}
	return NewCatalogUseCase(store.Animals(), catalog, profiles, media), store, media
}

func TestCreateListing(t *testing.T) {
	uc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	animal, err := uc.CreateListing(ctx, "owner", CreateAnimalInput{
		Name: " Rex ", Age: "2 years", Breed: "Labrador", Location: "Jakarta", Image: "https://img/rex.png",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, animal.Key)
	assert.Equal(t, "Rex", animal.Name)
	assert.Equal(t, entity.AnimalCreator{UserID: "owner", UserEmail: "owner@x.io", UserName: "Owner", UserImage: "https://img/o.png"}, animal.CreatedUser)

	page := uc.ListAnimals(utils.NewPaginationParams(1, 10))
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, uc.ListByCreator("owner", utils.NewPaginationParams(1, 10)).Items, 1)
	assert.Empty(t, uc.ListByCreator("other", utils.NewPaginationParams(1, 10)).Items)

	_, err = uc.CreateListing(ctx, "owner", CreateAnimalInput{Name: "NoImage", Age: "1", Breed: "x"})
	assert.Error(t, err)
	assert.Equal(t, int64(1), uc.ListAnimals(utils.NewPaginationParams(1, 10)).Total)
}

func TestUpdateAndDeleteListingCreatorOnly(t *testing.T) {
	uc, _, media := newCatalogFixture(t)
	ctx := context.Background()

	animal, err := uc.CreateListing(ctx, "owner", CreateAnimalInput{
		Name: "Rex", Age: "2", Breed: "Lab", Image: "https://img/rex.png",
	})
	require.NoError(t, err)

	_, err = uc.UpdateListing(ctx, "other", animal.Key, UpdateAnimalInput{Name: "Stolen"})
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Status)

	updated, err := uc.UpdateListing(ctx, "owner", animal.Key, UpdateAnimalInput{Breed: "Golden"})
	require.NoError(t, err)
	assert.Equal(t, "Golden", updated.Breed)
	assert.Equal(t, "Rex", updated.Name)
	assert.NotNil(t, updated.UpdatedAt)

	assert.True(t, errors.Is(uc.DeleteListing(ctx, "other", animal.Key), "FORBIDDEN"))
	require.NoError(t, uc.DeleteListing(ctx, "owner", animal.Key))
	assert.Equal(t, []string{"https://img/rex.png"}, media.deleted)
	assert.Empty(t, uc.ListAnimals(utils.NewPaginationParams(1, 10)).Items)

	_, err = uc.GetAnimal(ctx, animal.Key)
	assert.True(t, errors.IsNotFound(err))
}
