// Package memory is an in-process document store with live subscriptions, used for local
// development and tests.
package memory

import (
	"petadopt/internal/domain/repository"
)

type Store struct {
	faults *faults

	users      *userRepo
	animals    *animalRepo
	watchlists *watchlistRepo
	chats      *chatRepo
}

func NewStore() *Store {
	f := &faults{}
	return &Store{
		faults:     f,
		users:      newUserRepo(f),
		animals:    newAnimalRepo(f),
		watchlists: newWatchlistRepo(f),
		chats:      newChatRepo(f),
	}
}

func (s *Store) Users() repository.UserRepository {
	return s.users
}

func (s *Store) Animals() repository.AnimalRepository {
	return s.animals
}

func (s *Store) Watchlists() repository.WatchlistRepository {
	return s.watchlists
}

func (s *Store) Chats() repository.ChatRepository {
	return s.chats
}

// FailNext makes the next call of op return err.
func (s *Store) FailNext(op string, err error) {
	s.faults.set(op, err)
}

// BreakSubscriptions delivers err to every animal and chat listener, as a dropped
// connection would.
func (s *Store) BreakSubscriptions(err error) {
	s.animals.subs.fail(err)
	s.chats.breakAll(err)
}

// ActiveSubscriptions counts registered listeners across all collections.
func (s *Store) ActiveSubscriptions() int {
	return s.users.subs.count() + s.animals.subs.count() + s.watchlists.subs.count() + s.chats.subs.count()
}

// SeedWatchlist writes ids verbatim, duplicates included.
func (s *Store) SeedWatchlist(userID string, ids ...string) {
	s.watchlists.Seed(userID, ids...)
}

// WatchlistIDs returns the stored list and whether the document exists.
func (s *Store) WatchlistIDs(userID string) ([]string, bool) {
	return s.watchlists.Raw(userID)
}

func (s *Store) ConversationCount() int {
	return s.chats.Count()
}
