package repository

import (
	"context"

	"petadopt/internal/domain/entity"
)

type WatchlistRepository interface {
	// Get returns a NOT_FOUND AppError when the user has never saved anything.
	Get(ctx context.Context, userID string) (*entity.Watchlist, error)

	// Add is a set-union; it creates the document when missing.
	Add(ctx context.Context, userID, animalID string) error

	// Remove drops every occurrence of animalID. Missing documents are not an error.
	Remove(ctx context.Context, userID, animalID string) error

	// Watch delivers nil when the document does not exist.
	Watch(ctx context.Context, userID string, fn func(*entity.Watchlist, error)) (Subscription, error)
}
