package usecase

import (
	"context"
	"sync"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/internal/domain/service"
)

type WatchlistView struct {
	Animals []*entity.Animal `json:"animals"`
	Members []string         `json:"animals_id"`
}

type ToggleResult struct {
	AnimalID string   `json:"animal_id"`
	Watching bool     `json:"watching"`
	Members  []string `json:"animals_id"`
}

type WatchlistUseCase struct {
	watchlistRepo repository.WatchlistRepository
	catalog       CatalogReader
	broadcaster   service.EventBroadcaster

	mu          sync.Mutex
	reconcilers map[string]*WatchlistReconciler
}

func NewWatchlistUseCase(
	watchlistRepo repository.WatchlistRepository,
	catalog CatalogReader,
	broadcaster service.EventBroadcaster,
) *WatchlistUseCase {
	return &WatchlistUseCase{
		watchlistRepo: watchlistRepo,
		catalog:       catalog,
		broadcaster:   broadcaster,
		reconcilers:   make(map[string]*WatchlistReconciler),
	}
}

func (uc *WatchlistUseCase) GetWatchlist(ctx context.Context, uid string) (*WatchlistView, error) {
	r, err := uc.reconciler(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &WatchlistView{
		Animals: r.WatchList(),
		Members: r.Members(),
	}, nil
}

func (uc *WatchlistUseCase) Toggle(ctx context.Context, uid, animalID string) (*ToggleResult, error) {
	r, err := uc.reconciler(ctx, uid)
	if err != nil {
		return nil, err
	}

	watching, err := r.Toggle(ctx, animalID)
	if err != nil {
		return nil, err
	}

	return &ToggleResult{
		AnimalID: animalID,
		Watching: watching,
		Members:  r.Members(),
	}, nil
}

// Release stops the reconciler of uid, if any.
func (uc *WatchlistUseCase) Release(uid string) {
	uc.mu.Lock()
	r, ok := uc.reconcilers[uid]
	delete(uc.reconcilers, uid)
	uc.mu.Unlock()

	if ok {
		r.Close()
	}
}

func (uc *WatchlistUseCase) reconciler(ctx context.Context, uid string) (*WatchlistReconciler, error) {
	uc.mu.Lock()
	r, ok := uc.reconcilers[uid]
	uc.mu.Unlock()
	if ok {
		return r, nil
	}

	r = NewWatchlistReconciler(uid, uc.watchlistRepo, uc.catalog, func(members []string) {
		if uc.broadcaster != nil {
			uc.broadcaster.PublishToUser(uid, service.EventWatchlistUpdate, members)
		}
	})
	if err := r.Load(ctx); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	if existing, ok := uc.reconcilers[uid]; ok {
		uc.mu.Unlock()
		r.Close()
		return existing, nil
	}
	uc.reconcilers[uid] = r
	uc.mu.Unlock()

	return r, nil
}
