package repository

import (
	"context"

	"petadopt/internal/domain/entity"
)

type AnimalRepository interface {
	// Create assigns the generated document ID to animal.Key.
	Create(ctx context.Context, animal *entity.Animal) error
	GetByID(ctx context.Context, id string) (*entity.Animal, error)
	Update(ctx context.Context, id string, update entity.AnimalUpdate) error
	Delete(ctx context.Context, id string) error

	// WatchAll delivers the full collection on every change.
	WatchAll(ctx context.Context, fn func([]*entity.Animal, error)) (Subscription, error)
}
