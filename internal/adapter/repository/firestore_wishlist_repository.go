package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"petadopt/internal/domain/entity"
	"petadopt/internal/domain/repository"
	"petadopt/pkg/errors"
	"petadopt/pkg/logger"
)

const (
	watchlistCollection = "watchlist"
	watchlistField      = "animals_id"
)

type firestoreWatchlistRepository struct {
	client *firestore.Client
}

func NewFirestoreWatchlistRepository(client *firestore.Client) repository.WatchlistRepository {
	return &firestoreWatchlistRepository{client: client}
}

func (r *firestoreWatchlistRepository) Get(ctx context.Context, userID string) (*entity.Watchlist, error) {
	doc, err := r.client.Collection(watchlistCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Watchlist", err)
		}
		return nil, errors.Internal("Failed to get watchlist", err)
	}

	return decodeWatchlist(userID, doc)
}

func (r *firestoreWatchlistRepository) Add(ctx context.Context, userID, animalID string) error {
	_, err := r.client.Collection(watchlistCollection).Doc(userID).Set(ctx, map[string]interface{}{
		watchlistField: firestore.ArrayUnion(animalID),
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to add to watchlist", err)
	}

	logger.Debug("Added animal %s to watchlist for user %s", animalID, userID)
	return nil
}

func (r *firestoreWatchlistRepository) Remove(ctx context.Context, userID, animalID string) error {
	_, err := r.client.Collection(watchlistCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: watchlistField, Value: firestore.ArrayRemove(animalID)},
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return errors.Internal("Failed to remove from watchlist", err)
	}

	logger.Debug("Removed animal %s from watchlist for user %s", animalID, userID)
	return nil
}

func (r *firestoreWatchlistRepository) Watch(ctx context.Context, userID string, fn func(*entity.Watchlist, error)) (repository.Subscription, error) {
	ref := r.client.Collection(watchlistCollection).Doc(userID)
	return watchDoc(ctx, ref, func(doc *firestore.DocumentSnapshot, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		if !doc.Exists() {
			fn(nil, nil)
			return
		}
		watchlist, err := decodeWatchlist(userID, doc)
		if err != nil {
			logger.Warn("Skipping undecodable watchlist document %s: %v", userID, err)
			return
		}
		fn(watchlist, nil)
	}), nil
}

func decodeWatchlist(userID string, doc *firestore.DocumentSnapshot) (*entity.Watchlist, error) {
	var watchlist entity.Watchlist
	if err := doc.DataTo(&watchlist); err != nil {
		return nil, errors.Internal("Failed to parse watchlist data", err)
	}
	watchlist.UserID = userID
	return &watchlist, nil
}
