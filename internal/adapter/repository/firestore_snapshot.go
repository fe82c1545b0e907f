package repository

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"petadopt/internal/domain/repository"
	"petadopt/pkg/logger"
)

// watchQuery runs a snapshot listener for q in its own goroutine. The callback sees every
// snapshot in order, and at most one error, after which the listener ends.
func watchQuery(ctx context.Context, q firestore.Query, name string, fn func(*firestore.QuerySnapshot, error)) repository.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	it := q.Snapshots(ctx)

	go func() {
		for {
			snap, err := it.Next()
			if err != nil {
				if stopped(ctx, err) {
					logger.Debug("Snapshot listener stopped: %s", name)
					return
				}
				fn(nil, err)
				return
			}
			fn(snap, nil)
		}
	}()

	return stopOnce(cancel, it.Stop)
}

func watchDoc(ctx context.Context, ref *firestore.DocumentRef, fn func(*firestore.DocumentSnapshot, error)) repository.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	it := ref.Snapshots(ctx)

	go func() {
		for {
			snap, err := it.Next()
			if err != nil {
				if stopped(ctx, err) {
					logger.Debug("Snapshot listener stopped: %s", ref.Path)
					return
				}
				fn(nil, err)
				return
			}
			fn(snap, nil)
		}
	}()

	return stopOnce(cancel, it.Stop)
}

func stopped(ctx context.Context, err error) bool {
	return err == iterator.Done || ctx.Err() != nil || status.Code(err) == codes.Canceled
}

func stopOnce(cancel context.CancelFunc, stop func()) repository.Subscription {
	var once sync.Once
	return repository.SubscriptionFunc(func() {
		once.Do(func() {
			cancel()
			stop()
		})
	})
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
