package memory

import (
	"context"
	"sync"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
)

type watchlistRepo struct {
	faults *faults

	mu     sync.RWMutex
	byUser map[string][]string
	subs   keyedListeners[*entity.Watchlist]
}

func newWatchlistRepo(f *faults) *watchlistRepo {
	return &watchlistRepo{
		faults: f,
		byUser: make(map[string][]string),
	}
}

// Seed stores ids verbatim, duplicates included, as legacy data may contain them.
func (r *watchlistRepo) Seed(userID string, ids ...string) {
	r.mu.Lock()
	r.byUser[userID] = append([]string(nil), ids...)
	r.mu.Unlock()

	r.notify(userID)
}

func (r *watchlistRepo) Get(ctx context.Context, userID string) (*entity.Watchlist, error) {
	if err := r.faults.take(OpWatchlistGet); err != nil {
		return nil, err
	}

	w := r.current(userID)
	if w == nil {
		return nil, errors.NotFound("Watchlist", nil)
	}
	return w, nil
}

func (r *watchlistRepo) Add(ctx context.Context, userID, animalID string) error {
	if err := r.faults.take(OpWatchlistAdd); err != nil {
		return err
	}

	r.mu.Lock()
	ids, exists := r.byUser[userID]
	if !exists {
		ids = []string{}
	}
	if !contains(ids, animalID) {
		ids = append(ids, animalID)
	}
	r.byUser[userID] = ids
	r.mu.Unlock()

	r.notify(userID)
	return nil
}

func (r *watchlistRepo) Remove(ctx context.Context, userID, animalID string) error {
	if err := r.faults.take(OpWatchlistRemove); err != nil {
		return err
	}

	r.mu.Lock()
	ids, exists := r.byUser[userID]
	if !exists {
		r.mu.Unlock()
		return nil
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != animalID {
			kept = append(kept, id)
		}
	}
	r.byUser[userID] = kept
	r.mu.Unlock()

	r.notify(userID)
	return nil
}

func (r *watchlistRepo) Watch(ctx context.Context, userID string, fn func(*entity.Watchlist, error)) (repository.Subscription, error) {
	sub := r.subs.get(userID).subscribe(ctx, fn)
	fn(r.current(userID), nil)
	return sub, nil
}

// Raw returns the stored list and whether the document exists.
func (r *watchlistRepo) Raw(userID string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.byUser[userID]
	return append([]string(nil), ids...), ok
}

func (r *watchlistRepo) current(userID string) *entity.Watchlist {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	return &entity.Watchlist{UserID: userID, AnimalIDs: append([]string{}, ids...)}
}

func (r *watchlistRepo) notify(userID string) {
	r.subs.get(userID).emit(func() *entity.Watchlist { return r.current(userID) })
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
