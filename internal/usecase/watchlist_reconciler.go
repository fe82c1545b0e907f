package usecase

import (
	"context"
	"sync"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

// WatchlistReconciler holds one user's watchlist membership. Toggles apply locally first
// and are then written with set-union/set-remove; a failed write is not rolled back, the
// next document snapshot reconciles it.
type WatchlistReconciler struct {
	userID   string
	repo     repository.WatchlistRepository
	catalog  CatalogReader
	onChange func([]string)

	mu      sync.RWMutex
	members []string
	set     map[string]struct{}
	loaded  bool
	gen     uint64
	sub     repository.Subscription
}

func NewWatchlistReconciler(userID string, repo repository.WatchlistRepository, catalog CatalogReader, onChange func([]string)) *WatchlistReconciler {
	return &WatchlistReconciler{
		userID:   userID,
		repo:     repo,
		catalog:  catalog,
		onChange: onChange,
		members:  []string{},
		set:      make(map[string]struct{}),
	}
}

// Load fetches the stored watchlist once, then follows the document.
func (r *WatchlistReconciler) Load(ctx context.Context) error {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	old := r.sub
	r.sub = nil
	r.mu.Unlock()
	if old != nil {
		old.Stop()
	}

	watchlist, err := r.repo.Get(ctx, r.userID)
	if err != nil && !errors.IsNotFound(err) {
		logger.Error("Failed to load watchlist for %s: %v", r.userID, err)
		return err
	}
	r.replace(gen, watchlist.Members())

	sub, err := r.repo.Watch(context.WithoutCancel(ctx), r.userID, func(w *entity.Watchlist, err error) {
		if err != nil {
			logger.LogSubscriptionError("watchlist", r.userID, err)
			return
		}
		r.replace(gen, w.Members())
	})
	if err != nil {
		logger.LogSubscriptionError("watchlist", r.userID, err)
		return nil
	}

	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		sub.Stop()
		return nil
	}
	r.sub = sub
	r.mu.Unlock()
	return nil
}

// Toggle flips membership of animalID and reports whether it is now watched.
// Membership is not checked against the catalog; WatchList does the join.
func (r *WatchlistReconciler) Toggle(ctx context.Context, animalID string) (bool, error) {
	if animalID == "" {
		return false, errors.BadRequest("animal id is required", nil)
	}

	r.mu.Lock()
	_, watching := r.set[animalID]
	adding := !watching
	if adding {
		r.set[animalID] = struct{}{}
		r.members = append(r.members, animalID)
	} else {
		delete(r.set, animalID)
		r.members = without(r.members, animalID)
	}
	members := append([]string{}, r.members...)
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange(members)
	}

	var err error
	if adding {
		err = r.repo.Add(ctx, r.userID, animalID)
	} else {
		err = r.repo.Remove(ctx, r.userID, animalID)
	}
	if err != nil {
		logger.Error("Failed to persist watchlist toggle of %s for %s: %v", animalID, r.userID, err)
		return adding, errors.Internal("Failed to update watchlist", err)
	}

	return adding, nil
}

// WatchList returns the watched listings in catalog order. IDs without a listing are skipped.
func (r *WatchlistReconciler) WatchList() []*entity.Animal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Animal, 0, len(r.set))
	for _, a := range r.catalog.List() {
		if _, ok := r.set[a.Key]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (r *WatchlistReconciler) Members() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.members...)
}

func (r *WatchlistReconciler) Contains(animalID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.set[animalID]
	return ok
}

func (r *WatchlistReconciler) Close() {
	r.mu.Lock()
	r.gen++
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
}

func (r *WatchlistReconciler) replace(gen uint64, members []string) {
	set := make(map[string]struct{}, len(members))
	for _, id := range members {
		set[id] = struct{}{}
	}

	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return
	}
	r.members = members
	r.set = set
	r.loaded = true
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange(append([]string{}, members...))
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Loaded reports whether a stored state has been applied at least once.
func (r *WatchlistReconciler) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}
