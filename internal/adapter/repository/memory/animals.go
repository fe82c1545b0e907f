package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
)

type animalRepo struct {
	faults *faults

	mu   sync.RWMutex
	byID map[string]entity.Animal
	subs listeners[[]*entity.Animal]
}

func newAnimalRepo(f *faults) *animalRepo {
	return &animalRepo{
		faults: f,
		byID:   make(map[string]entity.Animal),
	}
}

func (r *animalRepo) Create(ctx context.Context, animal *entity.Animal) error {
	if err := r.faults.take(OpAnimalCreate); err != nil {
		return err
	}

	if animal.Key == "" {
		animal.Key = uuid.New().String()
	}
	if animal.CreatedAt.IsZero() {
		animal.CreatedAt = time.Now()
	}

	r.mu.Lock()
	r.byID[animal.Key] = *animal
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (*entity.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("Animal", nil)
	}
	return &a, nil
}

func (r *animalRepo) Update(ctx context.Context, id string, update entity.AnimalUpdate) error {
	r.mu.Lock()
	a, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Animal", nil)
	}
	if update.Name != "" {
		a.Name = update.Name
	}
	if update.Age != "" {
		a.Age = update.Age
	}
	if update.Breed != "" {
		a.Breed = update.Breed
	}
	if update.Location != "" {
		a.Location = update.Location
	}
	if update.Image != "" {
		a.Image = update.Image
	}
	now := time.Now()
	a.UpdatedAt = &now
	r.byID[id] = a
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *animalRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *animalRepo) WatchAll(ctx context.Context, fn func([]*entity.Animal, error)) (repository.Subscription, error) {
	sub := r.subs.subscribe(ctx, fn)
	fn(r.list(), nil)
	return sub, nil
}

// list returns fresh copies ordered by document ID.
func (r *animalRepo) list() []*entity.Animal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Animal, 0, len(r.byID))
	for _, a := range r.byID {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

func (r *animalRepo) notify() {
	r.subs.emit(r.list)
}
