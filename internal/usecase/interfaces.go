package usecase

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"petadopt/internal/domain/entity"
)

var validate = validator.New()

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	GetUser(ctx context.Context, uid string) (*entity.SessionUser, error)
}

type RateLimiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// ProfileProvider resolves the signed-in profile of a session scope.
type ProfileProvider interface {
	CurrentProfile(ctx context.Context, uid string) (*entity.Profile, error)
}

// CatalogReader is the read side of the animal catalog mirror.
type CatalogReader interface {
	List() []*entity.Animal
	Get(id string) (*entity.Animal, bool)
}
