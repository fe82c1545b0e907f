package usecase

import (
	"context"
	"sync"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/logger"
)

// CatalogSynchronizer mirrors the whole Animals collection for the lifetime of the process.
// Each snapshot replaces the mirror wholesale; a subscription error is kept in Err and
// the listener is not restarted.
type CatalogSynchronizer struct {
	repo     repository.AnimalRepository
	onChange func([]*entity.Animal)

	mu      sync.RWMutex
	animals []*entity.Animal
	byKey   map[string]*entity.Animal
	loading bool
	err     error
	sub     repository.Subscription
}

func NewCatalogSynchronizer(repo repository.AnimalRepository, onChange func([]*entity.Animal)) *CatalogSynchronizer {
	return &CatalogSynchronizer{
		repo:     repo,
		onChange: onChange,
		animals:  []*entity.Animal{},
		byKey:    make(map[string]*entity.Animal),
		loading:  true,
	}
}

func (s *CatalogSynchronizer) Start(ctx context.Context) error {
	s.mu.RLock()
	started := s.sub != nil
	s.mu.RUnlock()
	if started {
		return nil
	}

	sub, err := s.repo.WatchAll(context.WithoutCancel(ctx), s.apply)
	if err != nil {
		s.apply(nil, err)
		return err
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	logger.Info("Animal catalog subscription started")
	return nil
}

func (s *CatalogSynchronizer) apply(animals []*entity.Animal, err error) {
	if err != nil {
		logger.LogSubscriptionError("catalog", "Animals", err)
		s.mu.Lock()
		s.err = err
		s.loading = false
		s.mu.Unlock()
		return
	}

	list := make([]*entity.Animal, 0, len(animals))
	byKey := make(map[string]*entity.Animal, len(animals))
	for _, a := range animals {
		if a == nil || a.Key == "" {
			continue
		}
		copied := *a
		list = append(list, &copied)
		byKey[copied.Key] = &copied
	}

	s.mu.Lock()
	s.animals = list
	s.byKey = byKey
	s.loading = false
	s.err = nil
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(s.List())
	}
}

// List returns copies of the mirrored listings in snapshot order.
func (s *CatalogSynchronizer) List() []*entity.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Animal, len(s.animals))
	for i, a := range s.animals {
		copied := *a
		out[i] = &copied
	}
	return out
}

func (s *CatalogSynchronizer) Get(id string) (*entity.Animal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byKey[id]
	if !ok {
		return nil, false
	}
	copied := *a
	return &copied, true
}

func (s *CatalogSynchronizer) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *CatalogSynchronizer) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *CatalogSynchronizer) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
}
