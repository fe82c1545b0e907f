package repository

import (
	"context"

	"petadopt/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	// GetByEmail returns a NOT_FOUND AppError when no document carries the email.
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
	UpdateFields(ctx context.Context, id string, update entity.ProfileUpdate) error

	// Watch delivers the document on every change until the subscription is stopped.
	// A nil profile with a nil error means the document was deleted.
	Watch(ctx context.Context, id string, fn func(*entity.Profile, error)) (Subscription, error)
}
